package savgol

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidWindow is returned for windows that are not positive and odd.
	ErrInvalidWindow = errors.New("savgol: window must be a positive odd integer")

	// ErrInvalidOrder is returned when the polynomial order is negative or
	// not smaller than the window.
	ErrInvalidOrder = errors.New("savgol: order must be >= 0 and < window")

	// ErrWindowTooLong is returned when the window exceeds the signal length.
	ErrWindowTooLong = errors.New("savgol: window exceeds signal length")
)

// Validate checks a window/order pair.
func Validate(window, order int) error {
	if window < 1 || window%2 == 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWindow, window)
	}
	if order < 0 || order >= window {
		return fmt.Errorf("%w: order %d, window %d", ErrInvalidOrder, order, window)
	}
	return nil
}

// Coeffs returns the smoothing coefficients of a Savitzky-Golay filter:
// the least-squares polynomial fit of the given order over positions
// -window/2..window/2, evaluated at the centre. Applying them as
//
//	y[i] = sum_k c[k] * x[i - window/2 + k]
//
// reproduces any polynomial of degree <= order exactly.
func Coeffs(window, order int) ([]float64, error) {
	if err := Validate(window, order); err != nil {
		return nil, err
	}

	half := window / 2
	a := vandermonde(window, order, -half)

	// pinv(A) solves A*X = I in the least-squares sense; row 0 maps the
	// window onto the constant term, i.e. the value at position 0.
	var pinv mat.Dense
	if err := pinv.Solve(a, identity(window)); !usable(err) {
		return nil, fmt.Errorf("savgol: least-squares solve: %w", err)
	}

	return mat.Row(nil, 0, &pinv), nil
}

// Filter smooths x with a Savitzky-Golay filter.
//
// Interior samples use the convolution coefficients from Coeffs. The first
// and last window/2 samples are evaluated from a polynomial of the given
// order fitted to the first and last window samples respectively (the
// "interp" edge mode of scipy.signal.savgol_filter), so no padding is
// involved.
func Filter(x []float64, window, order int) ([]float64, error) {
	coeffs, err := Coeffs(window, order)
	if err != nil {
		return nil, err
	}
	if window > len(x) {
		return nil, fmt.Errorf("%w: window %d, length %d", ErrWindowTooLong, window, len(x))
	}

	n := len(x)
	half := window / 2
	out := make([]float64, n)

	for i := half; i < n-half; i++ {
		var y float64
		seg := x[i-half : i+half+1]
		for k, c := range coeffs {
			y += c * seg[k]
		}
		out[i] = y
	}

	if err := fitEdge(out[:half], x[:window], order, 0); err != nil {
		return nil, err
	}
	if err := fitEdge(out[n-half:], x[n-window:], order, window-half); err != nil {
		return nil, err
	}

	return out, nil
}

// fitEdge fits a polynomial to seg (positions 0..len(seg)-1) and evaluates
// it at positions first..first+len(dst)-1 into dst.
func fitEdge(dst, seg []float64, order, first int) error {
	if len(dst) == 0 {
		return nil
	}

	a := vandermonde(len(seg), order, 0)
	b := mat.NewVecDense(len(seg), append([]float64(nil), seg...))

	var p mat.VecDense
	if err := p.SolveVec(a, b); !usable(err) {
		return fmt.Errorf("savgol: edge fit: %w", err)
	}

	for i := range dst {
		dst[i] = horner(p.RawVector().Data, float64(first+i))
	}
	return nil
}

// usable reports whether a gonum solve produced a result. A mat.Condition
// error only warns about a large condition number; the solution is still set.
func usable(err error) bool {
	if err == nil {
		return true
	}
	var cond mat.Condition
	return errors.As(err, &cond)
}

// vandermonde returns the rows × (order+1) matrix with A[i][j] = (start+i)^j.
func vandermonde(rows, order, start int) *mat.Dense {
	a := mat.NewDense(rows, order+1, nil)
	for i := range rows {
		pos := float64(start + i)
		v := 1.0
		for j := 0; j <= order; j++ {
			a.Set(i, j, v)
			v *= pos
		}
	}
	return a
}

func identity(n int) *mat.Dense {
	id := mat.NewDense(n, n, nil)
	for i := range n {
		id.Set(i, i, 1)
	}
	return id
}

// horner evaluates sum_j p[j] * t^j.
func horner(p []float64, t float64) float64 {
	var y float64
	for j := len(p) - 1; j >= 0; j-- {
		y = y*t + p[j]
	}
	return y
}
