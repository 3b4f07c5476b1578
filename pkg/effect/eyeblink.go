package effect

import (
	"math/rand/v2"

	"github.com/teslashibe/go-motion/pkg/motion"
)

// BlinkState is a stage of the blink cycle.
type BlinkState int

const (
	// BlinkFirst is the state before the first update schedules a blink.
	BlinkFirst BlinkState = iota
	// BlinkInterval keeps the eyes open until the next scheduled blink.
	BlinkInterval
	// BlinkClosing ramps the eyes shut.
	BlinkClosing
	// BlinkClosed holds the eyes shut.
	BlinkClosed
	// BlinkOpening ramps the eyes open again.
	BlinkOpening
)

// String returns the lower-case name of the state.
func (s BlinkState) String() string {
	switch s {
	case BlinkInterval:
		return "interval"
	case BlinkClosing:
		return "closing"
	case BlinkClosed:
		return "closed"
	case BlinkOpening:
		return "opening"
	default:
		return "first"
	}
}

// Default blink timings in seconds.
const (
	DefaultBlinkInterval = 4.0
	DefaultBlinkClosing  = 0.1
	DefaultBlinkClosed   = 0.05
	DefaultBlinkOpening  = 0.15
)

// EyeBlink closes and reopens the eyes at randomized intervals. It writes
// 1 for open and 0 for closed to each of its parameters.
type EyeBlink struct {
	ids []string

	interval float64
	closing  float64
	closed   float64
	opening  float64

	rng *rand.Rand

	state      BlinkState
	time       float64
	stateStart float64
	nextBlink  float64
}

// BlinkOption configures an EyeBlink.
type BlinkOption func(*EyeBlink)

// WithBlinkInterval sets the mean interval between blinks.
func WithBlinkInterval(seconds float64) BlinkOption {
	return func(e *EyeBlink) { e.interval = seconds }
}

// WithBlinkTimings sets the closing, closed and opening durations.
func WithBlinkTimings(closing, closed, opening float64) BlinkOption {
	return func(e *EyeBlink) {
		e.closing, e.closed, e.opening = closing, closed, opening
	}
}

// WithRand sets the random source used to schedule blinks.
func WithRand(r *rand.Rand) BlinkOption {
	return func(e *EyeBlink) { e.rng = r }
}

// NewEyeBlink creates a blink effect for ids.
func NewEyeBlink(ids []string, opts ...BlinkOption) *EyeBlink {
	e := &EyeBlink{
		ids:      append([]string(nil), ids...),
		interval: DefaultBlinkInterval,
		closing:  DefaultBlinkClosing,
		closed:   DefaultBlinkClosed,
		opening:  DefaultBlinkOpening,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return e
}

// IDs returns the parameters the effect drives.
func (e *EyeBlink) IDs() []string { return e.ids }

// State returns the current blink stage.
func (e *EyeBlink) State() BlinkState { return e.state }

// Update advances the blink cycle by dt and writes the eye openness.
func (e *EyeBlink) Update(model motion.Model, dt float64) {
	e.time += dt
	v := e.advance()

	for _, id := range e.ids {
		idx := model.ParameterIndex(id)
		if idx < 0 {
			continue
		}
		model.SetParameterValue(idx, v, 1)
	}
}

// advance steps the state machine and returns the openness in [0, 1].
func (e *EyeBlink) advance() float64 {
	switch e.state {
	case BlinkClosing:
		t := progress(e.time-e.stateStart, e.closing)
		if t >= 1 {
			e.enter(BlinkClosed)
		}
		return 1 - t
	case BlinkClosed:
		if progress(e.time-e.stateStart, e.closed) >= 1 {
			e.enter(BlinkOpening)
		}
		return 0
	case BlinkOpening:
		t := progress(e.time-e.stateStart, e.opening)
		if t >= 1 {
			e.enter(BlinkInterval)
			e.nextBlink = e.scheduleNext()
		}
		return t
	case BlinkInterval:
		if e.nextBlink < e.time {
			e.enter(BlinkClosing)
		}
		return 1
	default:
		e.enter(BlinkInterval)
		e.nextBlink = e.scheduleNext()
		return 1
	}
}

func (e *EyeBlink) enter(s BlinkState) {
	e.state = s
	e.stateStart = e.time
}

// scheduleNext picks the next blink time, uniformly spread around interval.
func (e *EyeBlink) scheduleNext() float64 {
	return e.time + e.rng.Float64()*(2*e.interval-1)
}

func progress(elapsed, seconds float64) float64 {
	if seconds <= 0 {
		return 1
	}
	t := elapsed / seconds
	if t > 1 {
		return 1
	}
	if t < 0 {
		return 0
	}
	return t
}
