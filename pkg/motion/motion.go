// Package motion plays keyframe motions and expressions against a parameter
// model.
//
// A Motion is immutable playback data plus its callbacks; an Entry holds the
// per-playback state. Each frame the host calls Update with the accumulated
// user time in seconds, and the motion writes fade-weighted values into the
// model. Two motion kinds exist: KeyframeMotion evaluates curves from a
// Document, ExpressionMotion applies a fixed parameter set and is normally
// mixed through an ExpressionBlender.
//
// Everything here is synchronous and single-threaded. Begin and finish
// callbacks run inline on the updating goroutine and must not mutate the
// queue that is iterating the entry.
package motion

import "github.com/teslashibe/go-motion/pkg/curve"

// Behavior selects the loop bookkeeping rules.
type Behavior int

const (
	// BehaviorV2 preserves phase across loop seams, pads the loop by one
	// frame and refires the began callback on every loop.
	BehaviorV2 Behavior = iota
	// BehaviorV1 restarts timing at "now" on every loop.
	//
	// Deprecated: kept for content authored against the old loop timing.
	BehaviorV1
)

// String returns the behavior name.
func (b Behavior) String() string {
	if b == BehaviorV1 {
		return "v1"
	}
	return "v2"
}

// ParseBehavior maps "v1"/"v2" to a Behavior, defaulting to BehaviorV2.
func ParseBehavior(s string) Behavior {
	if s == "v1" {
		return BehaviorV1
	}
	return BehaviorV2
}

// Callback is invoked synchronously when a motion begins or finishes.
type Callback func(m Motion)

// Motion is implemented by KeyframeMotion and ExpressionMotion only.
type Motion interface {
	// Update advances entry to now and writes the motion into model.
	Update(model Model, entry *Entry, now float64)

	// FiredEvents returns event labels with since < fireTime <= now, both
	// measured from the entry's start time.
	FiredEvents(since, now float64) []string

	// Duration returns the playback length, or -1 when unbounded.
	Duration() float64
	// LoopDuration returns the length of one loop, or -1 when unbounded.
	LoopDuration() float64

	FadeInTime() float64
	FadeOutTime() float64
	Weight() float64

	fadeWeight(entry *Entry, now float64) float64
}

// base holds the fade, loop and callback settings shared by both motion kinds.
type base struct {
	self Motion

	fadeIn     float64
	fadeOut    float64
	weight     float64
	offset     float64
	loop       bool
	loopFadeIn bool
	behavior   Behavior

	onBegan    Callback
	onFinished Callback
}

// FadeInTime returns the motion-level fade-in length in seconds.
func (b *base) FadeInTime() float64 { return b.fadeIn }

// FadeOutTime returns the motion-level fade-out length in seconds.
func (b *base) FadeOutTime() float64 { return b.fadeOut }

// Weight returns the motion weight in [0, 1].
func (b *base) Weight() float64 { return b.weight }

// SetFadeInTime sets the motion-level fade-in length.
func (b *base) SetFadeInTime(s float64) { b.fadeIn = s }

// SetFadeOutTime sets the motion-level fade-out length.
func (b *base) SetFadeOutTime(s float64) { b.fadeOut = s }

// SetWeight sets the motion weight, clamped to [0, 1].
func (b *base) SetWeight(w float64) { b.weight = clamp01(w) }

// Loop reports whether the motion repeats.
func (b *base) Loop() bool { return b.loop }

// SetLoop turns looping on or off. Takes effect on the next update.
func (b *base) SetLoop(v bool) { b.loop = v }

// LoopFadeIn reports whether each loop restarts the fade-in.
func (b *base) LoopFadeIn() bool { return b.loopFadeIn }

// SetLoopFadeIn sets whether each loop restarts the fade-in.
func (b *base) SetLoopFadeIn(v bool) { b.loopFadeIn = v }

// Behavior returns the loop behavior.
func (b *base) Behavior() Behavior { return b.behavior }

// SetOnBegan replaces the began callback. nil clears it.
func (b *base) SetOnBegan(fn Callback) { b.onBegan = fn }

// SetOnFinished replaces the finished callback. nil clears it.
func (b *base) SetOnFinished(fn Callback) { b.onFinished = fn }

func (b *base) began() {
	if b.onBegan != nil {
		b.onBegan(b.self)
	}
}

func (b *base) finishedCallback() {
	if b.onFinished != nil {
		b.onFinished(b.self)
	}
}

// setup runs the Created to Started transition on the first update.
func (b *base) setup(entry *Entry, now float64) {
	if entry == nil || entry.started || !entry.available {
		return
	}

	entry.started = true
	entry.startTime = now - b.offset
	entry.fadeInStartTime = now

	if entry.endTime < 0 {
		b.adjustEndTime(entry)
	}

	b.began()
}

// adjustEndTime derives the end time from the start time and duration,
// leaving it open when the motion is unbounded.
func (b *base) adjustEndTime(entry *Entry) {
	d := b.self.Duration()
	if d <= 0 {
		entry.endTime = -1
		return
	}
	entry.endTime = entry.startTime + d
}

// fadeWeight returns weight * fadeIn * fadeOut for entry at now and records
// it on the entry. A nil entry degrades to full weight.
func (b *base) fadeWeight(entry *Entry, now float64) float64 {
	if entry == nil {
		logger().Error("fade weight requested for nil motion entry")
		return 1
	}

	fadeIn := curve.FadeProgress(now-entry.fadeInStartTime, b.fadeIn)
	fadeOut := 1.0
	if b.fadeOut > 0 && entry.endTime >= 0 {
		fadeOut = curve.EaseSine((entry.endTime - now) / b.fadeOut)
	}

	w := clamp01(b.weight * fadeIn * fadeOut)
	entry.setState(now, w)
	return w
}

// FadeWeight computes the fade weight of m for entry at now without
// otherwise advancing the entry.
func FadeWeight(m Motion, entry *Entry, now float64) float64 {
	if m == nil {
		return 1
	}
	return m.fadeWeight(entry, now)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Option configures a motion at construction.
type Option func(*settings)

type settings struct {
	fadeIn     *float64
	fadeOut    *float64
	weight     float64
	offset     float64
	loop       *bool
	loopFadeIn bool
	behavior   Behavior
	onBegan    Callback
	onFinished Callback
	eyeBlink   []string
	lipSync    []string
}

func newSettings(opts []Option) settings {
	s := settings{weight: 1, loopFadeIn: true, behavior: BehaviorV2}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithFadeIn overrides the fade-in length from the source data.
func WithFadeIn(seconds float64) Option {
	return func(s *settings) { s.fadeIn = &seconds }
}

// WithFadeOut overrides the fade-out length from the source data.
func WithFadeOut(seconds float64) Option {
	return func(s *settings) { s.fadeOut = &seconds }
}

// WithWeight sets the motion weight (default 1).
func WithWeight(w float64) Option {
	return func(s *settings) { s.weight = clamp01(w) }
}

// WithOffset starts playback offset seconds into the motion.
func WithOffset(seconds float64) Option {
	return func(s *settings) { s.offset = seconds }
}

// WithLoop overrides the loop flag from the source data.
func WithLoop(loop bool) Option {
	return func(s *settings) { s.loop = &loop }
}

// WithLoopFadeIn sets whether each loop restarts the fade-in (default true).
func WithLoopFadeIn(v bool) Option {
	return func(s *settings) { s.loopFadeIn = v }
}

// WithBehavior selects the loop behavior (default BehaviorV2).
func WithBehavior(b Behavior) Option {
	return func(s *settings) { s.behavior = b }
}

// WithOnBegan sets the began callback.
func WithOnBegan(fn Callback) Option {
	return func(s *settings) { s.onBegan = fn }
}

// WithOnFinished sets the finished callback.
func WithOnFinished(fn Callback) Option {
	return func(s *settings) { s.onFinished = fn }
}

// WithEyeBlinkIDs registers the parameters driven by an EyeBlink model curve.
func WithEyeBlinkIDs(ids ...string) Option {
	return func(s *settings) { s.eyeBlink = append([]string(nil), ids...) }
}

// WithLipSyncIDs registers the parameters driven by a LipSync model curve.
func WithLipSyncIDs(ids ...string) Option {
	return func(s *settings) { s.lipSync = append([]string(nil), ids...) }
}

func (s settings) base(fadeIn, fadeOut float64, loop bool) base {
	if s.fadeIn != nil {
		fadeIn = *s.fadeIn
	}
	if s.fadeOut != nil {
		fadeOut = *s.fadeOut
	}
	if s.loop != nil {
		loop = *s.loop
	}
	return base{
		fadeIn:     fadeIn,
		fadeOut:    fadeOut,
		weight:     s.weight,
		offset:     s.offset,
		loop:       loop,
		loopFadeIn: s.loopFadeIn,
		behavior:   s.behavior,
		onBegan:    s.onBegan,
		onFinished: s.onFinished,
	}
}
