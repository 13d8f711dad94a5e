package activity

import "errors"

var (
	// ErrInvalidCategory indicates a category outside the fixed set.
	ErrInvalidCategory = errors.New("invalid activity category")
	// ErrInvalidPayload indicates the payload does not fit its category.
	ErrInvalidPayload = errors.New("invalid activity payload")
	// ErrInvalidInput indicates missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid activity input")
	// ErrNotFound indicates the record doesn't exist.
	ErrNotFound = errors.New("activity not found")
	// ErrStoreUnavailable indicates a transient store failure. Not retried here.
	ErrStoreUnavailable = errors.New("activity store unavailable")
)
