package calcium

import "errors"

var (
	// ErrInvalidConfiguration is returned for hyperparameters that are out
	// of range, either at construction or when they conflict with the input
	// (for example a window longer than the trace).
	ErrInvalidConfiguration = errors.New("calcium: invalid configuration")

	// ErrInvalidInput is returned for nil tables, non-finite samples and
	// values outside a transform's domain.
	ErrInvalidInput = errors.New("calcium: invalid input")

	// ErrSolver is returned when the deconvolution solver fails on a column.
	ErrSolver = errors.New("calcium: solver failed")
)
