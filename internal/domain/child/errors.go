package child

import "errors"

var (
	// ErrChildNotFound indicates the child doesn't exist.
	ErrChildNotFound = errors.New("child not found")
	// ErrInvalidInput indicates invalid child input.
	ErrInvalidInput = errors.New("invalid child input")
)
