package calcium

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cwbudde/algo-calcium/deconv"
	"github.com/cwbudde/algo-calcium/dsp/core"
)

// Output selects what the Deconvolver emits.
const (
	OutputDenoised = "denoised"
	OutputSpikes   = "spikes"
)

// MedianDetrendConfig configures MedianFilterDetrend.
type MedianDetrendConfig struct {
	// Window is the odd median-filter kernel size in samples.
	Window int `yaml:"window" validate:"gt=0,odd"`
	// PeakStdThreshold caps the baseline at this many robust standard
	// deviations of the baseline itself.
	PeakStdThreshold float64 `yaml:"peak_std_threshold" validate:"gt=0,finite"`
}

// DefaultMedianDetrendConfig returns Window 101 and PeakStdThreshold 4.
func DefaultMedianDetrendConfig() MedianDetrendConfig {
	return MedianDetrendConfig{Window: 101, PeakStdThreshold: 4}
}

// SavGolDetrendConfig configures SavGolFilterDetrend.
type SavGolDetrendConfig struct {
	// Window is the odd filter length in samples; it must exceed Order.
	Window int `yaml:"window" validate:"gt=0,odd,gtfield=Order"`
	// Order is the degree of the local polynomial fit.
	Order int `yaml:"order" validate:"gte=0"`
}

// DefaultSavGolDetrendConfig returns Window 201 and Order 3.
func DefaultSavGolDetrendConfig() SavGolDetrendConfig {
	return SavGolDetrendConfig{Window: 201, Order: 3}
}

// EventRescaleConfig configures EventRescale.
type EventRescaleConfig struct {
	LogTransform bool    `yaml:"log_transform"`
	Scale        float64 `yaml:"scale" validate:"gt=0,finite"`
}

// DefaultEventRescaleConfig returns LogTransform true and Scale 5.
func DefaultEventRescaleConfig() EventRescaleConfig {
	return EventRescaleConfig{LogTransform: true, Scale: 5}
}

// NormalizerConfig configures Normalizer.
type NormalizerConfig struct {
	// Window is the rolling window width in samples.
	Window int `yaml:"window" validate:"gt=0"`
	// Percentile of the window taken as baseline, in [0, 100].
	Percentile float64 `yaml:"percentile" validate:"gte=0,lte=100"`
}

// DefaultNormalizerConfig returns Window 180 and Percentile 8.
func DefaultNormalizerConfig() NormalizerConfig {
	return NormalizerConfig{Window: 180, Percentile: 8}
}

// DeconvolverConfig configures Deconvolver. All fields except Output are
// passed to the solver; see deconv.Params.
type DeconvolverConfig struct {
	// Output is OutputDenoised or OutputSpikes. It is checked by Transform.
	Output    string             `yaml:"output"`
	G         []float64          `yaml:"g"`
	Sn        *float64           `yaml:"sn" validate:"omitempty,gt=0,finite"`
	B         *float64           `yaml:"b"`
	BNonneg   bool               `yaml:"b_nonneg"`
	OptimizeG int                `yaml:"optimize_g" validate:"gte=0"`
	Penalty   int                `yaml:"penalty" validate:"oneof=0 1"`
	Extra     map[string]float64 `yaml:"extra"`
}

// DefaultDeconvolverConfig returns spike output with every solver
// parameter estimated, a non-negative baseline and the L0 penalty.
func DefaultDeconvolverConfig() DeconvolverConfig {
	return DeconvolverConfig{Output: OutputSpikes, BNonneg: true, Penalty: deconv.PenaltyL0}
}

// Params converts the solver part of the configuration into a fresh
// deconv.Params.
func (c DeconvolverConfig) Params() deconv.Params {
	return deconv.Params{
		G:         c.G,
		Sn:        c.Sn,
		B:         c.B,
		BNonneg:   c.BNonneg,
		OptimizeG: c.OptimizeG,
		Penalty:   c.Penalty,
		Extra:     c.Extra,
	}.Clone()
}

func (c DeconvolverConfig) clone() DeconvolverConfig {
	p := c.Params()
	c.G, c.Sn, c.B, c.Extra = p.G, p.Sn, p.B, p.Extra
	return c
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("odd", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%2 != 0
	})
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		return core.IsFinite(fl.Field().Float())
	})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateConfig checks a configuration struct against its tags and
// reports violations as ErrInvalidConfiguration.
func ValidateConfig(cfg any) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "odd":
		return fmt.Sprintf("%s must be odd, got %v", fe.Field(), fe.Value())
	case "finite":
		return fmt.Sprintf("%s must be finite, got %v", fe.Field(), fe.Value())
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s must satisfy %s=%s, got %v", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
	}
}
