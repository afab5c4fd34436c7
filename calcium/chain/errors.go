package chain

import "errors"

var (
	// ErrUnknownType is returned when a step references an unregistered type.
	ErrUnknownType = errors.New("chain: unknown step type")

	// ErrUnknownParam is returned for step parameters the step type does
	// not accept.
	ErrUnknownParam = errors.New("chain: unknown parameter")

	// ErrInvalidParam is returned for parameter values of an unsupported type.
	ErrInvalidParam = errors.New("chain: invalid parameter")

	// ErrInvalidChain is returned for malformed chain definitions.
	ErrInvalidChain = errors.New("chain: invalid chain")
)
