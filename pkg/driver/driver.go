// Package driver runs motions, expressions and idle effects against a model
// on a fixed-rate loop and publishes the resulting frames.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-motion/pkg/effect"
	"github.com/teslashibe/go-motion/pkg/library"
	"github.com/teslashibe/go-motion/pkg/model"
	"github.com/teslashibe/go-motion/pkg/motion"
	"github.com/teslashibe/go-motion/pkg/protocol"
)

// DefaultFPS is the tick rate used when none is configured.
const DefaultFPS = 30.0

// maxStep caps the dt of a single Run tick after a stall.
const maxStep = 0.25

var (
	// ErrBusy is returned when a motion's priority does not beat the one
	// playing or reserved.
	ErrBusy = errors.New("motion slot busy")

	// ErrInvalidFPS is returned for a non-positive or absurd tick rate.
	ErrInvalidFPS = errors.New("invalid fps")
)

// Sink receives every message the driver publishes.
type Sink interface {
	Publish(msg *protocol.Message) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(msg *protocol.Message) error

// Publish calls f(msg).
func (f SinkFunc) Publish(msg *protocol.Message) error { return f(msg) }

// Driver owns a model and the managers that animate it.
//
// All methods are safe for concurrent use. Motion callbacks run on the
// ticking goroutine with the driver locked.
type Driver struct {
	mu sync.Mutex

	def         *model.Definition
	model       *model.Model
	lib         *library.Registry
	motions     *motion.Manager
	expressions *motion.ExpressionManager
	blink       *effect.EyeBlink
	blinkSet    bool
	breath      *effect.Breath

	sink     Sink
	log      *slog.Logger
	fps      float64
	behavior motion.Behavior

	names      map[motion.Handle]string
	playing    string
	expression string
	pending    []protocol.EventData
	seq        uint64

	running atomic.Bool
	ticks   atomic.Uint64
	metrics *metrics
}

// Option configures a Driver.
type Option func(*Driver)

// WithDefinition sets the model layout. The default is
// model.DefaultDefinition.
func WithDefinition(def *model.Definition) Option {
	return func(d *Driver) { d.def = def }
}

// WithSink sets where frames and events are published.
func WithSink(s Sink) Option {
	return func(d *Driver) { d.sink = s }
}

// WithLogger sets the driver's logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.log = l }
}

// WithFPS sets the Run tick rate.
func WithFPS(fps float64) Option {
	return func(d *Driver) { d.fps = fps }
}

// WithBehavior sets the loop behavior of played motions.
func WithBehavior(b motion.Behavior) Option {
	return func(d *Driver) { d.behavior = b }
}

// WithEyeBlink replaces the automatic blink. nil disables blinking.
func WithEyeBlink(b *effect.EyeBlink) Option {
	return func(d *Driver) {
		d.blink = b
		d.blinkSet = true
	}
}

// WithBreath replaces the idle breathing. nil disables it.
func WithBreath(b *effect.Breath) Option {
	return func(d *Driver) { d.breath = b }
}

// New creates a driver playing documents from lib.
func New(lib *library.Registry, opts ...Option) (*Driver, error) {
	d := &Driver{
		def:         model.DefaultDefinition(),
		lib:         lib,
		motions:     motion.NewManager(),
		expressions: motion.NewExpressionManager(),
		breath:      effect.DefaultBreath(),
		log:         slog.Default(),
		fps:         DefaultFPS,
		names:       make(map[motion.Handle]string),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.fps <= 0 || d.fps > 1000 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFPS, d.fps)
	}
	if !d.blinkSet && len(d.def.EyeBlink) > 0 {
		d.blink = effect.NewEyeBlink(d.def.EyeBlink)
	}
	d.model = d.def.Build()
	d.motions.Queue().SetEventHandler(d.onEvent)

	m, err := newMetrics(d)
	if err != nil {
		return nil, err
	}
	d.metrics = m
	return d, nil
}

// Model returns the driven model. Callers must not use it while the driver
// is ticking.
func (d *Driver) Model() *model.Model { return d.model }

// SetSink replaces the publish target. nil stops publishing.
func (d *Driver) SetSink(s Sink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sink = s
}

// FPS returns the Run tick rate.
func (d *Driver) FPS() float64 { return d.fps }

// Play starts the named motion at priority p. The motion fades in over the
// one already playing, which fades out.
func (d *Driver) Play(name string, p motion.Priority) (motion.Handle, error) {
	doc, err := d.lib.Motion(name)
	if err != nil {
		return motion.Handle{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.motions.CanStart(p) {
		return motion.Handle{}, fmt.Errorf("%w: %s at priority %d, playing %d",
			ErrBusy, name, p, d.motions.CurrentPriority())
	}

	km, err := motion.NewKeyframeMotion(doc,
		motion.WithBehavior(d.behavior),
		motion.WithEyeBlinkIDs(d.def.EyeBlink...),
		motion.WithLipSyncIDs(d.def.LipSync...),
		motion.WithOnFinished(d.onFinished),
	)
	if err != nil {
		return motion.Handle{}, fmt.Errorf("failed to prepare motion %s: %w", name, err)
	}

	h, err := d.motions.Start(km, p)
	if err != nil {
		return motion.Handle{}, err
	}
	d.names[h] = name
	d.playing = name
	d.log.Info("motion started", "motion", name, "priority", p, "handle", h)
	return h, nil
}

// SetExpression layers the named expression over the active ones.
func (d *Driver) SetExpression(name string) (motion.Handle, error) {
	doc, err := d.lib.Expression(name)
	if err != nil {
		return motion.Handle{}, err
	}

	expr, err := motion.NewExpressionMotion(doc)
	if err != nil {
		return motion.Handle{}, fmt.Errorf("failed to prepare expression %s: %w", name, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	h, err := d.expressions.Start(expr, motion.PriorityNormal)
	if err != nil {
		return motion.Handle{}, err
	}
	d.expression = name
	d.log.Info("expression started", "expression", name, "handle", h)
	return h, nil
}

// Stop drops every motion and fades every expression out.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.motions.StopAll()
	d.expressions.StopAll()
	clear(d.names)
	d.playing = ""
	d.log.Info("stopped all motions")
}

// Tick advances the driver by dt seconds and publishes the frame plus any
// events fired during the tick.
func (d *Driver) Tick(dt float64) protocol.FrameData {
	d.mu.Lock()
	m := d.model

	m.LoadParameters()
	updated := d.motions.Update(m, dt)
	m.SaveParameters()
	applyOpacity(m, d.motions.Queue())
	d.pruneNames()

	if !updated && d.blink != nil {
		d.blink.Update(m, dt)
	}
	d.expressions.Update(m, dt)
	if d.breath != nil {
		d.breath.Update(m, dt)
	}

	if d.motions.IsFinished() {
		d.playing = ""
	}
	if d.expressions.IsFinished() {
		d.expression = ""
	}

	d.seq++
	frame := d.frameLocked()
	events := d.pending
	d.pending = nil
	sink := d.sink
	d.mu.Unlock()

	d.ticks.Add(1)
	ctx := context.Background()
	d.metrics.ticks.Add(ctx, 1)
	if len(events) > 0 {
		d.metrics.events.Add(ctx, int64(len(events)))
	}

	d.publish(sink, frame, events)
	return frame
}

// Run ticks at the configured rate until ctx is done.
func (d *Driver) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return errors.New("driver already running")
	}
	defer d.running.Store(false)

	period := time.Duration(float64(time.Second) / d.fps)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	d.log.Info("driver started", "fps", d.fps)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			d.log.Info("driver stopped", "ticks", d.ticks.Load())
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			d.Tick(min(dt, maxStep))
		}
	}
}

// IsRunning reports whether Run is active.
func (d *Driver) IsRunning() bool { return d.running.Load() }

// Status describes what the driver is doing.
func (d *Driver) Status() protocol.StateData {
	d.mu.Lock()
	defer d.mu.Unlock()

	return protocol.StateData{
		Running:    d.running.Load(),
		Motion:     d.playing,
		Expression: d.expression,
		Priority:   int(d.motions.CurrentPriority()),
		Time:       d.motions.UserTime(),
		FPS:        d.fps,
		Ticks:      d.ticks.Load(),
	}
}

// Snapshot copies the current model state.
func (d *Driver) Snapshot() model.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.model.Snapshot()
}

func (d *Driver) activeEntries() (motions, expressions int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.motions.Queue().Len(), d.expressions.Blender().Len()
}

func (d *Driver) frameLocked() protocol.FrameData {
	snap := d.model.Snapshot()
	return protocol.FrameData{
		Seq:         d.seq,
		Time:        d.motions.UserTime(),
		Parameters:  snap.Parameters,
		Parts:       snap.Parts,
		Opacity:     snap.Opacity,
		Motions:     d.motions.Queue().Len(),
		Expressions: d.expressions.Blender().Len(),
	}
}

// nameOf returns the library name m was played as.
func (d *Driver) nameOf(m motion.Motion) string {
	for _, e := range d.motions.Queue().Entries() {
		if e.Motion() == m {
			return d.names[e.Handle()]
		}
	}
	return ""
}

// pruneNames forgets motions that have left the queue, whether they ran
// to the end or were faded out by a newer one.
func (d *Driver) pruneNames() {
	q := d.motions.Queue()
	for h := range d.names {
		if q.Entry(h) == nil {
			delete(d.names, h)
		}
	}
}

// applyOpacity copies the model opacity curve of the newest keyframe
// motion in q onto m.
func applyOpacity(m *model.Model, q *motion.Queue) {
	entries := q.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if km, ok := entries[i].Motion().(*motion.KeyframeMotion); ok {
			m.SetOpacity(km.ModelOpacity())
			return
		}
	}
}

// onEvent runs inside Tick with d.mu held.
func (d *Driver) onEvent(label string, m motion.Motion) {
	d.pending = append(d.pending, protocol.EventData{
		Motion: d.nameOf(m),
		Label:  label,
		Time:   d.motions.UserTime(),
	})
}

// onFinished runs inside Tick with d.mu held.
func (d *Driver) onFinished(m motion.Motion) {
	d.log.Debug("motion finished", "motion", d.nameOf(m))
}

func (d *Driver) publish(sink Sink, frame protocol.FrameData, events []protocol.EventData) {
	if sink == nil {
		return
	}
	for _, ev := range events {
		msg, err := protocol.NewEventMessage(ev.Motion, ev.Label, ev.Time)
		if err != nil {
			d.log.Error("failed to encode event", "error", err)
			continue
		}
		if err := sink.Publish(msg); err != nil {
			d.log.Warn("failed to publish event", "error", err)
		}
	}

	msg, err := protocol.NewFrameMessage(frame)
	if err != nil {
		d.log.Error("failed to encode frame", "error", err)
		return
	}
	if err := sink.Publish(msg); err != nil {
		d.log.Debug("failed to publish frame", "seq", frame.Seq, "error", err)
	}
}
