package driver

import (
	"fmt"
	"math"

	"github.com/teslashibe/go-motion/pkg/model"
	"github.com/teslashibe/go-motion/pkg/motion"
	"github.com/teslashibe/go-motion/pkg/protocol"
)

// MaxSampleFPS bounds the rate accepted by Sample.
const MaxSampleFPS = 240.0

// Sampled is a motion evaluated offline at a fixed rate.
type Sampled struct {
	FPS    float64              `json:"fps"`
	Frames []protocol.FrameData `json:"frames"`
	Events []protocol.EventData `json:"events,omitempty"`
}

// Sample plays doc once on a fresh model built from def and records a frame
// every 1/fps seconds, from time 0 through the end of the motion. Looping
// documents are sampled for a single loop. Fades apply as in live playback.
func Sample(name string, doc *motion.Document, def *model.Definition, fps float64, opts ...motion.Option) (*Sampled, error) {
	if fps <= 0 || fps > MaxSampleFPS || math.IsNaN(fps) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFPS, fps)
	}
	if doc == nil || doc.Duration < 0 {
		return nil, fmt.Errorf("%w: cannot sample a motion without a fixed duration", motion.ErrInvalidDocument)
	}
	if def == nil {
		def = model.DefaultDefinition()
	}

	opts = append([]motion.Option{
		motion.WithEyeBlinkIDs(def.EyeBlink...),
		motion.WithLipSyncIDs(def.LipSync...),
	}, opts...)
	opts = append(opts, motion.WithLoop(false))
	km, err := motion.NewKeyframeMotion(doc, opts...)
	if err != nil {
		return nil, err
	}

	out := &Sampled{FPS: fps}
	mgr := motion.NewManager()
	mgr.Queue().SetEventHandler(func(label string, _ motion.Motion) {
		out.Events = append(out.Events, protocol.EventData{Motion: name, Label: label, Time: mgr.UserTime()})
	})
	if _, err := mgr.Start(km, motion.PriorityForce); err != nil {
		return nil, err
	}

	m := def.Build()
	n := int(math.Floor(doc.Duration*fps)) + 1
	out.Frames = make([]protocol.FrameData, 0, n)
	dt := 1 / fps
	for i := 0; i < n; i++ {
		step := dt
		if i == 0 {
			step = 0
		}
		mgr.Update(m, step)
		applyOpacity(m, mgr.Queue())
		snap := m.Snapshot()
		out.Frames = append(out.Frames, protocol.FrameData{
			Seq:        uint64(i),
			Time:       mgr.UserTime(),
			Parameters: snap.Parameters,
			Parts:      snap.Parts,
			Opacity:    snap.Opacity,
			Motions:    mgr.Queue().Len(),
		})
	}
	return out, nil
}
