package errors

import "errors"

var (
	ErrNotFound = errors.New("availability record not found")

	ErrInvalidID = errors.New("invalid availability record ID format")

	// ErrDuplicate means a record for the same subject and day already exists.
	ErrDuplicate = errors.New("availability already recorded for subject on date")
)
