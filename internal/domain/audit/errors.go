package audit

import "errors"

// ErrInvalidFilter indicates an unknown edit kind in the filter.
var ErrInvalidFilter = errors.New("invalid audit filter")
