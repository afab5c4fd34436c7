package oasis

import "math"

type pool struct {
	v float64 // value at the pool start
	w float64 // weight
	t int     // start index
	l int     // length
}

// ar1 holds reusable buffers for repeated AR(1) solves on traces of the
// same length.
type ar1 struct {
	pools []pool
	yy    []float64
	c     []float64
}

func newAR1(n int) *ar1 {
	return &ar1{
		pools: make([]pool, 0, n),
		yy:    make([]float64, n),
		c:     make([]float64, n),
	}
}

// solve runs the active-set pool algorithm for
//
//	min ½‖y - c‖² + lam·‖s‖₁  s.t. s[t] = c[t] - g·c[t-1] ≥ smin, c ≥ 0
//
// and returns the calcium trace. The returned slice is owned by a and is
// overwritten by the next call.
func (a *ar1) solve(y []float64, g, lam, smin float64) []float64 {
	n := len(y)
	yy := a.yy[:n]
	shift := lam * (1 - g)
	for i, v := range y {
		yy[i] = v - shift
	}
	yy[n-1] = y[n-1] - lam

	p := a.pools[:0]
	for t, v := range yy {
		p = append(p, pool{v: v, w: 1, t: t, l: 1})
		for len(p) > 1 {
			i := len(p) - 2
			gl := math.Pow(g, float64(p[i].l))
			if p[i].v*gl+smin <= p[i+1].v {
				break
			}
			w2 := p[i+1].w * gl * gl
			p[i].v = (p[i].w*p[i].v + p[i+1].w*gl*p[i+1].v) / (p[i].w + w2)
			p[i].w += w2
			p[i].l += p[i+1].l
			p = p[:i+1]
		}
	}
	a.pools = p

	c := a.c[:n]
	for _, q := range p {
		v := math.Max(q.v, 0)
		for k := range q.l {
			c[q.t+k] = v
			v *= g
		}
	}
	return c
}

// spikes returns s[t] = c[t] - g·c[t-1] with s[0] = 0.
func spikes(c []float64, g float64) []float64 {
	s := make([]float64, len(c))
	for t := 1; t < len(c); t++ {
		s[t] = c[t] - g*c[t-1]
	}
	return s
}

func rss(y, c []float64) float64 {
	var sum float64
	for i, v := range y {
		d := v - c[i]
		sum += d * d
	}
	return sum
}
