// Package motionjson reads keyframe motion (.motion3.json) and expression
// (.exp3.json) files into the documents played by package motion.
package motionjson

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/teslashibe/go-motion/pkg/curve"
	"github.com/teslashibe/go-motion/pkg/motion"
)

// DefaultFadeTime is used for a missing or negative motion-level fade.
const DefaultFadeTime = 1.0

// Option configures parsing.
type Option func(*options)

type options struct {
	strict bool
}

// WithConsistencyCheck makes ParseMotion compare the Meta counts with the
// actual content and fail with ErrInconsistent on any mismatch.
func WithConsistencyCheck() Option {
	return func(o *options) { o.strict = true }
}

// ParseMotion parses a .motion3.json buffer into a validated document.
func ParseMotion(data []byte, opts ...Option) (*motion.Document, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var raw MotionFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse motion JSON: %w", err)
	}

	if o.strict {
		if err := checkConsistency(&raw); err != nil {
			return nil, err
		}
	}

	return Build(&raw)
}

// Build converts an already decoded motion file into a document.
func Build(raw *MotionFile) (*motion.Document, error) {
	doc := &motion.Document{
		Duration:          raw.Meta.Duration,
		FPS:               raw.Meta.Fps,
		Loop:              raw.Meta.Loop,
		BeziersRestricted: raw.Meta.AreBeziersRestricted,
		FadeInTime:        fadeOrDefault(raw.Meta.FadeInTime),
		FadeOutTime:       fadeOrDefault(raw.Meta.FadeOutTime),
	}

	curves := make([]CurveData, len(raw.Curves))
	copy(curves, raw.Curves)
	targets := make(map[string]motion.Target, len(curves))
	for _, c := range curves {
		t, err := parseTarget(c.Target)
		if err != nil {
			return nil, fmt.Errorf("curve %q: %w", c.ID, err)
		}
		targets[c.Target] = t
	}
	sort.SliceStable(curves, func(i, j int) bool {
		return targets[curves[i].Target] < targets[curves[j].Target]
	})

	for _, c := range curves {
		first, specs, err := decodeSegments(c.Segments)
		if err != nil {
			return nil, fmt.Errorf("curve %q: %w", c.ID, err)
		}

		mc := motion.Curve{
			Target:      targets[c.Target],
			ID:          c.ID,
			FadeInTime:  curveFade(c.FadeInTime),
			FadeOutTime: curveFade(c.FadeOutTime),
		}
		if err := doc.AddCurve(mc, first, specs...); err != nil {
			return nil, err
		}
	}

	for _, u := range raw.UserData {
		doc.Events = append(doc.Events, motion.Event{FireTime: u.Time, Value: u.Value})
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func parseTarget(s string) (motion.Target, error) {
	switch s {
	case "Model":
		return motion.TargetModel, nil
	case "Parameter":
		return motion.TargetParameter, nil
	case "PartOpacity":
		return motion.TargetPartOpacity, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidTarget, s)
	}
}

// decodeSegments splits a flat segment array into its first point and the
// per-segment point lists.
func decodeSegments(seg []float64) (curve.Point, []motion.SegmentSpec, error) {
	if len(seg) < 2 {
		return curve.Point{}, nil, fmt.Errorf("%w: missing first point", ErrTruncatedSegments)
	}
	first := curve.Point{Time: seg[0], Value: seg[1]}

	var specs []motion.SegmentSpec
	for pos := 2; pos < len(seg); {
		st, err := segmentType(seg[pos])
		if err != nil {
			return curve.Point{}, nil, fmt.Errorf("at index %d: %w", pos, err)
		}
		pos++

		n := st.PointCount() - 1
		if pos+2*n > len(seg) {
			return curve.Point{}, nil, fmt.Errorf("%w: %v segment at index %d", ErrTruncatedSegments, st, pos-1)
		}
		points := make([]curve.Point, n)
		for i := range points {
			points[i] = curve.Point{Time: seg[pos], Value: seg[pos+1]}
			pos += 2
		}
		specs = append(specs, motion.SegmentSpec{Type: st, Points: points})
	}
	return first, specs, nil
}

func segmentType(v float64) (curve.SegmentType, error) {
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSegmentType, v)
	}
	st := curve.SegmentType(int(v))
	if !st.Valid() {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSegmentType, v)
	}
	return st, nil
}

// checkConsistency compares the declared Meta counts with the content.
func checkConsistency(raw *MotionFile) error {
	segments, points := 0, 0
	for _, c := range raw.Curves {
		_, specs, err := decodeSegments(c.Segments)
		if err != nil {
			return fmt.Errorf("curve %q: %w", c.ID, err)
		}
		points++
		for _, s := range specs {
			segments++
			points += len(s.Points)
		}
	}

	m := raw.Meta
	switch {
	case m.CurveCount != len(raw.Curves):
		return fmt.Errorf("%w: CurveCount %d, found %d", ErrInconsistent, m.CurveCount, len(raw.Curves))
	case m.TotalSegmentCount != segments:
		return fmt.Errorf("%w: TotalSegmentCount %d, found %d", ErrInconsistent, m.TotalSegmentCount, segments)
	case m.TotalPointCount != points:
		return fmt.Errorf("%w: TotalPointCount %d, found %d", ErrInconsistent, m.TotalPointCount, points)
	case m.UserDataCount != len(raw.UserData):
		return fmt.Errorf("%w: UserDataCount %d, found %d", ErrInconsistent, m.UserDataCount, len(raw.UserData))
	}
	return nil
}

func fadeOrDefault(v *float64) float64 {
	if v == nil || *v < 0 {
		return DefaultFadeTime
	}
	return *v
}

func curveFade(v *float64) float64 {
	if v == nil || *v < 0 {
		return motion.NoFade
	}
	return *v
}
