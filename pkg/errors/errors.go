package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrEmptyKey     = errors.New("empty key")
	ErrInvalidData  = errors.New("invalid data type")
	ErrEntityExists = errors.New("entity already exists")

	// ErrParameterMismatch is returned when incoming parameters do not match the model layout.
	ErrParameterMismatch = errors.New("parameter mismatch")
	// ErrInvalidConfig is returned when a round configuration is missing or out of range.
	ErrInvalidConfig = errors.New("invalid round config")
	// ErrIOFailure marks a failed checkpoint write. It never aborts a round.
	ErrIOFailure = errors.New("checkpoint io failure")
)
