package chain

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/cwbudde/algo-calcium/calcium"
	"github.com/cwbudde/algo-calcium/dsp/core"
)

// Params holds the parsed parameters of one chain step.
type Params struct {
	Name     string
	Type     string
	Bypassed bool
	Num      map[string]float64
	Str      map[string]string
	Bool     map[string]bool
	List     map[string][]float64
}

// GetNum extracts a numeric parameter, returning def if missing. A value
// of another type or a non-finite number fails with ErrInvalidParam.
func (p Params) GetNum(key string, def float64) (float64, error) {
	v, ok := p.Num[key]
	if !ok {
		return def, p.wrongType(key, "a number")
	}
	if !core.IsFinite(v) {
		return def, p.invalid(key, "must be finite, got %v", v)
	}
	return v, nil
}

// GetInt extracts an integral numeric parameter, returning def if missing.
// Fractional values fail with ErrInvalidParam.
func (p Params) GetInt(key string, def int) (int, error) {
	v, err := p.GetNum(key, math.NaN())
	if err != nil {
		return def, err
	}
	if math.IsNaN(v) {
		return def, nil
	}
	if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return def, p.invalid(key, "must be an integer, got %v", v)
	}
	return int(v), nil
}

// GetStr extracts a string parameter, returning def if missing.
func (p Params) GetStr(key, def string) (string, error) {
	v, ok := p.Str[key]
	if !ok {
		return def, p.wrongType(key, "a string")
	}
	return v, nil
}

// GetBool extracts a boolean parameter, returning def if missing.
func (p Params) GetBool(key string, def bool) (bool, error) {
	v, ok := p.Bool[key]
	if !ok {
		return def, p.wrongType(key, "a boolean")
	}
	return v, nil
}

// GetList extracts a numeric list parameter, returning a copy of def if
// missing. A single number is read as a one-element list.
func (p Params) GetList(key string, def []float64) ([]float64, error) {
	if v, ok := p.List[key]; ok {
		return slices.Clone(v), nil
	}
	if _, ok := p.Num[key]; ok {
		v, err := p.GetNum(key, 0)
		if err != nil {
			return slices.Clone(def), err
		}
		return []float64{v}, nil
	}
	return slices.Clone(def), p.wrongType(key, "a number or a list of numbers")
}

// wrongType reports a key stored under a type other than want. It returns
// nil when key is absent.
func (p Params) wrongType(key, want string) error {
	if !p.Has(key) {
		return nil
	}
	return p.invalid(key, "must be %s", want)
}

func (p Params) invalid(key, format string, args ...any) error {
	return fmt.Errorf("%w: %w: %q of step %q: %s", ErrInvalidParam, calcium.ErrInvalidConfiguration,
		key, p.Name, fmt.Sprintf(format, args...))
}

// reader reads several parameters and keeps the first error.
type reader struct {
	p   Params
	err error
}

func (r *reader) num(key string, def float64) float64 {
	v, err := r.p.GetNum(key, def)
	r.keep(err)
	return v
}

func (r *reader) integer(key string, def int) int {
	v, err := r.p.GetInt(key, def)
	r.keep(err)
	return v
}

func (r *reader) str(key, def string) string {
	v, err := r.p.GetStr(key, def)
	r.keep(err)
	return v
}

func (r *reader) boolean(key string, def bool) bool {
	v, err := r.p.GetBool(key, def)
	r.keep(err)
	return v
}

func (r *reader) list(key string, def []float64) []float64 {
	v, err := r.p.GetList(key, def)
	r.keep(err)
	return v
}

// optNum returns nil when key is missing.
func (r *reader) optNum(key string) *float64 {
	if !r.p.Has(key) {
		return nil
	}
	v := r.num(key, 0)
	return &v
}

// numPrefix returns the numeric parameters under prefix, keyed without it.
// Non-numeric values under prefix fail.
func (r *reader) numPrefix(prefix string) map[string]float64 {
	for _, k := range r.p.keys() {
		if strings.HasPrefix(k, prefix) {
			r.num(k, 0)
		}
	}
	return r.p.WithPrefix(prefix)
}

func (r *reader) keep(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Has reports whether key is set in any of the parameter maps.
func (p Params) Has(key string) bool {
	_, num := p.Num[key]
	_, str := p.Str[key]
	_, b := p.Bool[key]
	_, list := p.List[key]
	return num || str || b || list
}

// WithPrefix returns the numeric parameters whose key starts with prefix,
// keyed without it.
func (p Params) WithPrefix(prefix string) map[string]float64 {
	var out map[string]float64
	for k, v := range p.Num {
		if rest, ok := strings.CutPrefix(k, prefix); ok {
			if out == nil {
				out = make(map[string]float64)
			}
			out[rest] = v
		}
	}
	return out
}

// keys returns every parameter key in sorted order.
func (p Params) keys() []string {
	var keys []string
	for k := range p.Num {
		keys = append(keys, k)
	}
	for k := range p.Str {
		keys = append(keys, k)
	}
	for k := range p.Bool {
		keys = append(keys, k)
	}
	for k := range p.List {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// checkKnown fails with ErrUnknownParam for keys outside allowed. Keys
// under an allowed "prefix." entry are accepted.
func (p Params) checkKnown(allowed ...string) error {
	for _, k := range p.keys() {
		if !known(k, allowed) {
			return fmt.Errorf("%w: %q for step %q (%s)", ErrUnknownParam, k, p.Name, p.Type)
		}
	}
	return nil
}

func known(key string, allowed []string) bool {
	for _, a := range allowed {
		if key == a {
			return true
		}
		if strings.HasSuffix(a, ".") && strings.HasPrefix(key, a) {
			return true
		}
	}
	return false
}

// parseParams sorts raw YAML values into typed maps. Nested maps are
// flattened into dotted keys; null values are dropped.
func parseParams(raw map[string]any) (Params, error) {
	p := Params{
		Num:  map[string]float64{},
		Str:  map[string]string{},
		Bool: map[string]bool{},
		List: map[string][]float64{},
	}
	if err := p.add("", raw); err != nil {
		return Params{}, err
	}
	return p, nil
}

func (p *Params) add(prefix string, raw map[string]any) error {
	for k, v := range raw {
		key := prefix + k
		switch t := v.(type) {
		case nil:
		case float64:
			p.Num[key] = t
		case float32:
			p.Num[key] = float64(t)
		case int:
			p.Num[key] = float64(t)
		case int64:
			p.Num[key] = float64(t)
		case uint64:
			p.Num[key] = float64(t)
		case string:
			p.Str[key] = t
		case bool:
			p.Bool[key] = t
		case []any:
			list := make([]float64, len(t))
			for i, e := range t {
				f, ok := toFloat(e)
				if !ok {
					return fmt.Errorf("%w: %q[%d] is not a number: %v", ErrInvalidParam, key, i, e)
				}
				list[i] = f
			}
			p.List[key] = list
		case map[string]any:
			if err := p.add(key+".", t); err != nil {
				return err
			}
		case map[any]any:
			m := make(map[string]any, len(t))
			for mk, mv := range t {
				m[fmt.Sprint(mk)] = mv
			}
			if err := p.add(key+".", m); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %q has unsupported type %T", ErrInvalidParam, key, v)
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	default:
		return 0, false
	}
}
