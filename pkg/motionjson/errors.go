package motionjson

import "errors"

var (
	// ErrInvalidSegmentType is returned for a segment tag outside 0..3.
	ErrInvalidSegmentType = errors.New("invalid segment type")

	// ErrInvalidTarget is returned for a curve target other than Model,
	// Parameter or PartOpacity.
	ErrInvalidTarget = errors.New("invalid curve target")

	// ErrTruncatedSegments is returned when a segment array ends inside a
	// point or segment.
	ErrTruncatedSegments = errors.New("truncated segment data")

	// ErrInconsistent is returned in strict mode when the Meta counts do not
	// match the curves, segments, points or user data actually present.
	ErrInconsistent = errors.New("motion meta counts do not match content")
)
