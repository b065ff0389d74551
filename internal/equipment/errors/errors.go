package errors

import "errors"

var (
	ErrNotFound = errors.New("equipment booking not found")

	ErrInvalidID = errors.New("invalid equipment booking ID format")
)
