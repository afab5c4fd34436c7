package median

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-calcium/internal/sortedwin"
)

var (
	// ErrEvenKernel is returned for kernel sizes that are not positive and odd.
	ErrEvenKernel = errors.New("median: kernel size must be a positive odd integer")

	// ErrKernelTooLong is returned when the kernel exceeds the signal length.
	ErrKernelTooLong = errors.New("median: kernel size exceeds signal length")
)

// ValidateKernel checks that kernel is positive and odd.
func ValidateKernel(kernel int) error {
	if kernel < 1 || kernel%2 == 0 {
		return fmt.Errorf("%w: %d", ErrEvenKernel, kernel)
	}
	return nil
}

// Filter applies a centered median filter of the given odd kernel size.
//
// Samples outside the signal are treated as zeros, so the first and last
// kernel/2 outputs are medians over a partially zero-padded window. This is
// the boundary policy of scipy.signal.medfilt.
//
// The kernel must not exceed len(x). Input must not contain NaN.
func Filter(x []float64, kernel int) ([]float64, error) {
	if err := ValidateKernel(kernel); err != nil {
		return nil, err
	}
	if kernel > len(x) {
		return nil, fmt.Errorf("%w: kernel %d, length %d", ErrKernelTooLong, kernel, len(x))
	}

	out := make([]float64, len(x))
	FilterTo(out, x, kernel)
	return out, nil
}

// FilterTo writes the median-filtered x into dst without validation.
// dst and x must have the same length and must not alias.
func FilterTo(dst, x []float64, kernel int) {
	n := len(x)
	half := kernel / 2

	at := func(i int) float64 {
		if i < 0 || i >= n {
			return 0
		}
		return x[i]
	}

	w := sortedwin.New(kernel)
	for j := -half; j <= half; j++ {
		w.Insert(at(j))
	}
	dst[0] = w.At(half)

	for i := 1; i < n; i++ {
		w.Replace(at(i-half-1), at(i+half))
		dst[i] = w.At(half)
	}
}
