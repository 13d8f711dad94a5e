package repository

import "errors"

var (
	// ErrNotFound is returned when a requested document doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrUnavailable is returned when the store cannot serve the call right now
	// (locked, busy or closed). Callers may retry with backoff.
	ErrUnavailable = errors.New("store unavailable")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
