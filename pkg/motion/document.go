package motion

import (
	"fmt"
	"math"

	"github.com/teslashibe/go-motion/pkg/curve"
)

// Target identifies what a curve drives.
type Target int

const (
	// TargetModel curves drive model-wide scalars (EyeBlink, LipSync, Opacity).
	TargetModel Target = iota
	// TargetParameter curves drive model parameters.
	TargetParameter
	// TargetPartOpacity curves drive part opacities.
	TargetPartOpacity
)

// String returns the target name as it appears in motion files.
func (t Target) String() string {
	switch t {
	case TargetModel:
		return "Model"
	case TargetParameter:
		return "Parameter"
	case TargetPartOpacity:
		return "PartOpacity"
	default:
		return fmt.Sprintf("Target(%d)", int(t))
	}
}

// NoFade marks a curve fade time that defers to the motion-level value.
const NoFade = -1.0

// Curve is one animated quantity. Its segments are
// Segments[BaseSegment : BaseSegment+SegmentCount] of the owning document.
type Curve struct {
	Target       Target
	ID           string
	FadeInTime   float64
	FadeOutTime  float64
	BaseSegment  int
	SegmentCount int
}

// HasFadeOverride reports whether the curve carries its own fade times.
func (c Curve) HasFadeOverride() bool {
	return c.FadeInTime >= 0 || c.FadeOutTime >= 0
}

// Segment is a typed sub-interval of a curve. Its points start at
// Points[BasePoint] of the owning document.
type Segment struct {
	Type      curve.SegmentType
	BasePoint int
	Evaluate  curve.Evaluator
}

// Event is a user label that fires once playback passes FireTime.
type Event struct {
	FireTime float64
	Value    string
}

// SegmentSpec describes one segment while a curve is being built: its type
// and the points after the one it shares with the previous segment.
type SegmentSpec struct {
	Type   curve.SegmentType
	Points []curve.Point
}

// Document is a parsed motion. It is built once (by a parser or with
// AddCurve) and treated as immutable afterwards.
type Document struct {
	Duration          float64
	FPS               float64
	Loop              bool
	BeziersRestricted bool

	// FadeInTime and FadeOutTime are the motion-level defaults.
	FadeInTime  float64
	FadeOutTime float64

	Curves   []Curve
	Segments []Segment
	Points   []curve.Point
	Events   []Event
}

// BezierStrategy returns the Bezier evaluator selection for this document.
func (d *Document) BezierStrategy() curve.BezierStrategy {
	if d.BeziersRestricted {
		return curve.BezierBinarySearch
	}
	return curve.BezierCardano
}

// AddCurve appends a curve made of a first point followed by segments.
// BaseSegment and SegmentCount of c are filled in.
func (d *Document) AddCurve(c Curve, first curve.Point, segments ...SegmentSpec) error {
	if len(segments) == 0 {
		return fmt.Errorf("%w: curve %q has no segments", ErrInvalidSegment, c.ID)
	}

	c.BaseSegment = len(d.Segments)
	c.SegmentCount = 0

	points := []curve.Point{first}
	built := make([]Segment, 0, len(segments))
	for i, spec := range segments {
		if !spec.Type.Valid() {
			return fmt.Errorf("%w: curve %q segment %d has type %d", ErrInvalidSegment, c.ID, i, int(spec.Type))
		}
		if want := spec.Type.PointCount() - 1; len(spec.Points) != want {
			return fmt.Errorf("%w: curve %q %v segment %d needs %d points, got %d",
				ErrInvalidSegment, c.ID, spec.Type, i, want, len(spec.Points))
		}
		eval, err := curve.EvaluatorFor(spec.Type, d.BezierStrategy())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSegment, err)
		}

		built = append(built, Segment{
			Type:      spec.Type,
			BasePoint: len(d.Points) + len(points) - 1,
			Evaluate:  eval,
		})
		points = append(points, spec.Points...)
		c.SegmentCount++
	}

	d.Points = append(d.Points, points...)
	d.Segments = append(d.Segments, built...)
	d.Curves = append(d.Curves, c)
	return nil
}

// Validate checks the structural invariants the evaluator relies on.
func (d *Document) Validate() error {
	if math.IsNaN(d.Duration) || math.IsInf(d.Duration, 0) {
		return fmt.Errorf("%w: duration %v", ErrInvalidDocument, d.Duration)
	}
	if d.FPS < 0 {
		return fmt.Errorf("%w: fps %v", ErrInvalidDocument, d.FPS)
	}
	if d.FadeInTime < 0 || d.FadeOutTime < 0 {
		return fmt.Errorf("%w: negative motion fade time", ErrInvalidDocument)
	}

	for ci, c := range d.Curves {
		if !validFade(c.FadeInTime) || !validFade(c.FadeOutTime) {
			return fmt.Errorf("%w: curve %q fade times must be -1 or >= 0", ErrInvalidDocument, c.ID)
		}
		if c.SegmentCount <= 0 || c.BaseSegment < 0 || c.BaseSegment+c.SegmentCount > len(d.Segments) {
			return fmt.Errorf("%w: curve %d (%q) segment range out of bounds", ErrInvalidDocument, ci, c.ID)
		}

		prev := math.Inf(-1)
		for si := c.BaseSegment; si < c.BaseSegment+c.SegmentCount; si++ {
			s := d.Segments[si]
			if s.Evaluate == nil || !s.Type.Valid() {
				return fmt.Errorf("%w: curve %q segment %d has no evaluator", ErrInvalidDocument, c.ID, si)
			}
			last := s.BasePoint + s.Type.PointCount() - 1
			if s.BasePoint < 0 || last >= len(d.Points) {
				return fmt.Errorf("%w: curve %q segment %d point range out of bounds", ErrInvalidDocument, c.ID, si)
			}
			// Bezier handles may run outside the segment's time span, only
			// the endpoints have to be ordered.
			for _, p := range []curve.Point{d.Points[s.BasePoint], d.Points[last]} {
				if p.Time < prev {
					return fmt.Errorf("%w: curve %q point times decrease at segment %d", ErrInvalidDocument, c.ID, si)
				}
				prev = p.Time
			}
		}
	}
	return nil
}

func validFade(v float64) bool {
	return v == NoFade || v >= 0
}

// lastPoint returns the index of the final point of segment s.
func (d *Document) lastPoint(s int) int {
	seg := d.Segments[s]
	return seg.BasePoint + seg.Type.PointCount() - 1
}

// evaluateCurve returns the value of curve ci at time. When correct is set
// and time is past the final keyframe but before loopEnd, the value eases
// from the last keyframe back toward the first so a loop seam stays smooth.
func (d *Document) evaluateCurve(ci int, time float64, correct bool, loopEnd float64) float64 {
	c := d.Curves[ci]
	end := c.BaseSegment + c.SegmentCount

	target := -1
	lastIdx := 0
	for i := c.BaseSegment; i < end; i++ {
		lastIdx = d.lastPoint(i)
		if d.Points[lastIdx].Time > time {
			target = i
			break
		}
	}

	if target == -1 {
		if correct && time < loopEnd {
			first := d.Segments[c.BaseSegment].BasePoint
			return d.correctEndPoint(end-1, first, lastIdx, time, loopEnd)
		}
		return d.Points[lastIdx].Value
	}

	seg := d.Segments[target]
	return seg.Evaluate(d.Points[seg.BasePoint:], time)
}

// correctEndPoint interpolates from the curve's last point to its first
// point over [last.Time, loopEnd] using the last real segment's rule.
func (d *Document) correctEndPoint(segment, firstIdx, lastIdx int, time, loopEnd float64) float64 {
	virtual := []curve.Point{
		d.Points[lastIdx],
		{Time: loopEnd, Value: d.Points[firstIdx].Value},
	}

	switch d.Segments[segment].Type {
	case curve.Stepped:
		return curve.EvaluateStepped(virtual, time)
	case curve.InverseStepped:
		return curve.EvaluateInverseStepped(virtual, time)
	default:
		return curve.EvaluateLinear(virtual, time)
	}
}

// FiredEvents returns the labels of events with since < FireTime <= now,
// in document order.
func (d *Document) FiredEvents(since, now float64) []string {
	var fired []string
	for _, e := range d.Events {
		if e.FireTime > since && e.FireTime <= now {
			fired = append(fired, e.Value)
		}
	}
	return fired
}
