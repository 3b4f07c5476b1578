package motion

import "errors"

var (
	// ErrInvalidDocument is returned when a document fails validation.
	ErrInvalidDocument = errors.New("invalid motion document")

	// ErrInvalidSegment is returned when a segment has an unknown type or the
	// wrong number of points.
	ErrInvalidSegment = errors.New("invalid motion segment")

	// ErrNilMotion is returned when a nil motion is queued.
	ErrNilMotion = errors.New("motion is nil")
)
