package engine

import "errors"

var (
	// ErrInvalidInterval is returned for start >= end, or for a day or
	// timestamp that cannot be parsed.
	ErrInvalidInterval = errors.New("invalid interval")

	// ErrUnknownSubject is returned when an explicit roster names a subject the
	// caller's known set does not contain.
	ErrUnknownSubject = errors.New("unknown subject")
)
