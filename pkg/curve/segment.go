// Package curve evaluates the piecewise segments that make up a motion curve.
//
// A curve is a time-ordered run of control points split into typed segments.
// Each segment type has its own interpolation rule: linear, stepped (hold the
// first value), inverse stepped (jump to the last value) or cubic Bezier.
// Bezier segments need the time axis inverted before the value can be read;
// two strategies are provided, an iterative subdivision search for data whose
// handles are known to keep time monotonic and a closed-form cubic solver for
// everything else.
//
// All evaluators are pure functions over their input points.
package curve

import "fmt"

// Point is a single keyframe control point.
type Point struct {
	Time  float64
	Value float64
}

// SegmentType identifies the interpolation rule of a segment.
type SegmentType int

const (
	// Linear interpolates straight between two points.
	Linear SegmentType = iota
	// Bezier interpolates along a cubic Bezier through four points.
	Bezier
	// Stepped holds the first point's value for the whole segment.
	Stepped
	// InverseStepped takes the second point's value for the whole segment.
	InverseStepped
)

// String returns the segment type name.
func (s SegmentType) String() string {
	switch s {
	case Linear:
		return "linear"
	case Bezier:
		return "bezier"
	case Stepped:
		return "stepped"
	case InverseStepped:
		return "inverse_stepped"
	default:
		return fmt.Sprintf("segment(%d)", int(s))
	}
}

// Valid reports whether s is one of the known segment types.
func (s SegmentType) Valid() bool {
	return s >= Linear && s <= InverseStepped
}

// PointCount returns how many points a segment of this type spans,
// including the point shared with the previous segment.
func (s SegmentType) PointCount() int {
	if s == Bezier {
		return 4
	}
	return 2
}

// Evaluator maps a segment's control points and a query time to a value.
// points starts at the segment's first point.
type Evaluator func(points []Point, time float64) float64

// BezierStrategy selects how Bezier segments invert time.
type BezierStrategy int

const (
	// BezierCardano solves the time cubic in closed form.
	BezierCardano BezierStrategy = iota
	// BezierBinarySearch subdivides the time projection until it brackets the query.
	BezierBinarySearch
)

// EvaluatorFor returns the evaluator for a segment type. strategy only
// matters for Bezier segments.
func EvaluatorFor(s SegmentType, strategy BezierStrategy) (Evaluator, error) {
	switch s {
	case Linear:
		return EvaluateLinear, nil
	case Stepped:
		return EvaluateStepped, nil
	case InverseStepped:
		return EvaluateInverseStepped, nil
	case Bezier:
		if strategy == BezierBinarySearch {
			return EvaluateBezierBinarySearch, nil
		}
		return EvaluateBezierCardano, nil
	default:
		return nil, fmt.Errorf("no evaluator for %v", s)
	}
}

// EvaluateLinear interpolates between points[0] and points[1].
// A zero-length segment behaves as an instantaneous step to the second value.
func EvaluateLinear(points []Point, time float64) float64 {
	p0, p1 := points[0], points[1]
	span := p1.Time - p0.Time
	if span <= 0 {
		if time < p0.Time {
			return p0.Value
		}
		return p1.Value
	}
	t := clamp01((time - p0.Time) / span)
	return lerp(p0.Value, p1.Value, t)
}

// EvaluateStepped returns the first point's value.
func EvaluateStepped(points []Point, _ float64) float64 {
	return points[0].Value
}

// EvaluateInverseStepped returns the second point's value.
func EvaluateInverseStepped(points []Point, _ float64) float64 {
	return points[1].Value
}

// lerp performs linear interpolation between two values.
func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// lerpPoint interpolates both coordinates of two points.
func lerpPoint(a, b Point, t float64) Point {
	return Point{
		Time:  lerp(a.Time, b.Time, t),
		Value: lerp(a.Value, b.Value, t),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}
