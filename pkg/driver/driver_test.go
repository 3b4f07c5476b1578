package driver

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-motion/pkg/curve"
	"github.com/teslashibe/go-motion/pkg/effect"
	"github.com/teslashibe/go-motion/pkg/library"
	"github.com/teslashibe/go-motion/pkg/model"
	"github.com/teslashibe/go-motion/pkg/motion"
	"github.com/teslashibe/go-motion/pkg/protocol"
)

type recorder struct {
	mu   sync.Mutex
	msgs []*protocol.Message
}

func (r *recorder) Publish(msg *protocol.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recorder) ofType(t protocol.MessageType) []*protocol.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*protocol.Message
	for _, m := range r.msgs {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

func builtIn(t *testing.T) *library.Registry {
	t.Helper()
	r := library.NewRegistry()
	require.NoError(t, r.LoadBuiltIn())
	return r
}

// newQuiet returns a driver without blink or breath so parameter values
// come from motions and expressions only.
func newQuiet(t *testing.T, opts ...Option) (*Driver, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts = append([]Option{WithSink(rec), WithEyeBlink(nil), WithBreath(nil)}, opts...)
	d, err := New(builtIn(t), opts...)
	require.NoError(t, err)
	return d, rec
}

// fadeDoc drives the model opacity from 1 down to 0 over one second.
func fadeDoc(t *testing.T, duration float64) *motion.Document {
	t.Helper()
	doc := &motion.Document{Duration: duration, FPS: 30}
	require.NoError(t, doc.AddCurve(
		motion.Curve{Target: motion.TargetModel, ID: motion.IDOpacity, FadeInTime: motion.NoFade, FadeOutTime: motion.NoFade},
		curve.Point{Time: 0, Value: 1},
		motion.SegmentSpec{Type: curve.Linear, Points: []curve.Point{{Time: 1, Value: 0}}},
	))
	return doc
}

func tickFor(d *Driver, seconds, fps float64) {
	n := int(seconds*fps + 0.5)
	for i := 0; i < n; i++ {
		d.Tick(1 / fps)
	}
}

func TestPlayFiresEventsAndFinishes(t *testing.T) {
	d, rec := newQuiet(t)

	_, err := d.Play("nod", motion.PriorityNormal)
	require.NoError(t, err)
	assert.Equal(t, "nod", d.Status().Motion)
	assert.Equal(t, int(motion.PriorityNormal), d.Status().Priority)

	d.Tick(0)
	tickFor(d, 0.5, 30)
	assert.InDelta(t, -20.0, d.Snapshot().Parameters[model.ParamAngleY], 0.5)

	tickFor(d, 1.5, 30)

	events := rec.ofType(protocol.TypeEvent)
	require.Len(t, events, 1)
	var ev protocol.EventData
	require.NoError(t, events[0].ParseData(&ev))
	assert.Equal(t, "nod", ev.Motion)
	assert.Equal(t, "nod", ev.Label)

	st := d.Status()
	assert.Empty(t, st.Motion)
	assert.Equal(t, int(motion.PriorityNone), st.Priority)

	frames := rec.ofType(protocol.TypeFrame)
	require.NotEmpty(t, frames)
	var last protocol.FrameData
	require.NoError(t, frames[len(frames)-1].ParseData(&last))
	assert.Equal(t, uint64(len(frames)), last.Seq)
	assert.Zero(t, last.Motions)
}

func TestPlayRespectsPriority(t *testing.T) {
	d, _ := newQuiet(t)

	_, err := d.Play("nod", motion.PriorityNormal)
	require.NoError(t, err)

	_, err = d.Play("idle", motion.PriorityIdle)
	assert.ErrorIs(t, err, ErrBusy)

	_, err = d.Play("shake", motion.PriorityForce)
	require.NoError(t, err)
	assert.Equal(t, "shake", d.Status().Motion)
}

func TestInterruptedMotionIsForgotten(t *testing.T) {
	d, _ := newQuiet(t)

	nod, err := d.Play("nod", motion.PriorityNormal)
	require.NoError(t, err)
	tickFor(d, 0.2, 30)

	shake, err := d.Play("shake", motion.PriorityForce)
	require.NoError(t, err)
	assert.Len(t, d.names, 2)

	// nod fades out over 0.3s once shake starts.
	tickFor(d, 0.5, 30)
	assert.Equal(t, 1, d.motions.Queue().Len())
	assert.NotContains(t, d.names, nod)
	assert.Equal(t, map[motion.Handle]string{shake: "shake"}, d.names)

	tickFor(d, 2, 30)
	assert.Empty(t, d.names)
}

func TestPlayUnknownMotion(t *testing.T) {
	d, _ := newQuiet(t)
	_, err := d.Play("missing", motion.PriorityNormal)
	assert.ErrorIs(t, err, library.ErrNotFound)

	_, err = d.SetExpression("missing")
	assert.ErrorIs(t, err, library.ErrNotFound)
}

func TestSetExpression(t *testing.T) {
	d, _ := newQuiet(t)

	_, err := d.SetExpression("smile")
	require.NoError(t, err)
	assert.Equal(t, "smile", d.Status().Expression)

	tickFor(d, 1, 30)
	snap := d.Snapshot()
	assert.InDelta(t, 1.0, snap.Parameters[model.ParamMouthForm], 1e-9)
	assert.InDelta(t, 0.8, snap.Parameters[model.ParamEyeLOpen], 1e-9)
	assert.InDelta(t, 1.0, snap.Parameters[model.ParamCheek], 1e-9)
}

func TestBlinkDoesNotOverrideExpression(t *testing.T) {
	d, _ := newQuiet(t, WithEyeBlink(effect.NewEyeBlink(
		[]string{model.ParamEyeLOpen, model.ParamEyeROpen},
		effect.WithBlinkInterval(0.5),
	)))

	_, err := d.SetExpression("smile")
	require.NoError(t, err)

	for i := 0; i < 120; i++ {
		frame := d.Tick(1.0 / 30)
		if i < 30 {
			continue
		}
		// Expressions run after the blink, so the multiply always applies.
		assert.LessOrEqual(t, frame.Parameters[model.ParamEyeLOpen], 0.8+1e-9, "tick %d", i)
		assert.LessOrEqual(t, frame.Parameters[model.ParamEyeROpen], 0.8+1e-9, "tick %d", i)
	}
}

func TestBlinkPausedWhileMotionPlays(t *testing.T) {
	blink := effect.NewEyeBlink(
		[]string{model.ParamEyeLOpen, model.ParamEyeROpen},
		effect.WithBlinkInterval(1000),
		effect.WithRand(rand.New(rand.NewPCG(1, 2))),
	)
	d, _ := newQuiet(t, WithEyeBlink(blink))

	_, err := d.Play("nod", motion.PriorityNormal)
	require.NoError(t, err)
	tickFor(d, 1, 30)
	assert.Equal(t, effect.BlinkFirst, blink.State())

	tickFor(d, 1, 30)
	assert.Equal(t, effect.BlinkInterval, blink.State())
}

func TestModelOpacityFollowsMotion(t *testing.T) {
	lib := library.NewRegistry()
	lib.RegisterMotion("fade", fadeDoc(t, 1))
	d, err := New(lib, WithEyeBlink(nil), WithBreath(nil))
	require.NoError(t, err)

	_, err = d.Play("fade", motion.PriorityNormal)
	require.NoError(t, err)
	d.Tick(0)
	assert.InDelta(t, 1.0, d.Snapshot().Opacity, 1e-9)

	tickFor(d, 0.5, 30)
	frame := d.Tick(0)
	assert.InDelta(t, 0.5, frame.Opacity, 0.02)
}

func TestStop(t *testing.T) {
	d, _ := newQuiet(t)

	_, err := d.Play("idle", motion.PriorityIdle)
	require.NoError(t, err)
	tickFor(d, 0.2, 30)

	d.Stop()
	d.Tick(1.0 / 30)
	st := d.Status()
	assert.Empty(t, st.Motion)
	assert.Zero(t, st.Priority)

	_, err = d.Play("nod", motion.PriorityIdle)
	assert.NoError(t, err)
}

func TestRun(t *testing.T) {
	d, rec := newQuiet(t, WithFPS(100))

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, d.IsRunning, time.Second, time.Millisecond)
	assert.Error(t, d.Run(context.Background()))

	err := <-done
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, d.IsRunning())
	assert.NotEmpty(t, rec.ofType(protocol.TypeFrame))
	assert.Positive(t, d.Status().Ticks)
}

func TestNewRejectsBadFPS(t *testing.T) {
	_, err := New(library.NewRegistry(), WithFPS(0))
	assert.ErrorIs(t, err, ErrInvalidFPS)
}

func TestDefaultEffectsMoveTheModel(t *testing.T) {
	d, err := New(builtIn(t))
	require.NoError(t, err)

	tickFor(d, 1, 30)
	assert.NotZero(t, d.Snapshot().Parameters[model.ParamBreath])
}

func TestSample(t *testing.T) {
	doc, err := builtIn(t).Motion("nod")
	require.NoError(t, err)

	s, err := Sample("nod", doc, nil, 30)
	require.NoError(t, err)

	assert.Len(t, s.Frames, 46)
	assert.Zero(t, s.Frames[0].Time)
	assert.Zero(t, s.Frames[0].Parameters[model.ParamAngleY])
	assert.InDelta(t, -20.0, s.Frames[15].Parameters[model.ParamAngleY], 0.5)
	require.Len(t, s.Events, 1)
	assert.Equal(t, "nod", s.Events[0].Label)

	fade, err := Sample("fade", fadeDoc(t, 1), nil, 10)
	require.NoError(t, err)
	require.Len(t, fade.Frames, 11)
	assert.InDelta(t, 1.0, fade.Frames[0].Opacity, 1e-9)
	assert.InDelta(t, 0.5, fade.Frames[5].Opacity, 1e-6)

	_, err = Sample("endless", fadeDoc(t, -1), nil, 30)
	assert.ErrorIs(t, err, motion.ErrInvalidDocument)

	_, err = Sample("nod", doc, nil, 0)
	assert.ErrorIs(t, err, ErrInvalidFPS)
	_, err = Sample("nod", doc, nil, MaxSampleFPS+1)
	assert.ErrorIs(t, err, ErrInvalidFPS)
}
