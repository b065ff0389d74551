package errors

import "errors"

var (
	ErrNotFound = errors.New("crew member not found")

	ErrInvalidID = errors.New("invalid crew member ID format")
)
