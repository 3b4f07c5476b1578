// Package effect provides procedural idle animation layered on top of
// motions: automatic eye blinking and breathing.
package effect

import (
	"math"

	"github.com/teslashibe/go-motion/pkg/motion"
)

// BreathParameter is one sine oscillator added onto a parameter.
type BreathParameter struct {
	ID     string  `json:"id"`
	Offset float64 `json:"offset"`
	Peak   float64 `json:"peak"`
	Cycle  float64 `json:"cycle"` // seconds per breath
	Weight float64 `json:"weight"`
}

// Breath adds gentle periodic motion to a set of parameters.
type Breath struct {
	params []BreathParameter
	time   float64
}

// NewBreath creates a breath effect over params.
func NewBreath(params ...BreathParameter) *Breath {
	return &Breath{params: append([]BreathParameter(nil), params...)}
}

// DefaultBreath returns the usual head, body and chest oscillators.
func DefaultBreath() *Breath {
	return NewBreath(
		BreathParameter{ID: "ParamAngleX", Offset: 0, Peak: 15, Cycle: 6.5345, Weight: 0.5},
		BreathParameter{ID: "ParamAngleY", Offset: 0, Peak: 8, Cycle: 3.5345, Weight: 0.5},
		BreathParameter{ID: "ParamAngleZ", Offset: 0, Peak: 10, Cycle: 5.5345, Weight: 0.5},
		BreathParameter{ID: "ParamBodyAngleX", Offset: 0, Peak: 4, Cycle: 15.5345, Weight: 0.5},
		BreathParameter{ID: "ParamBreath", Offset: 0.5, Peak: 0.5, Cycle: 3.2345, Weight: 1},
	)
}

// Parameters returns the oscillators.
func (b *Breath) Parameters() []BreathParameter { return b.params }

// Update advances the effect by dt seconds and adds each oscillator's value
// onto model.
func (b *Breath) Update(model motion.Model, dt float64) {
	b.time += dt
	phase := b.time * 2 * math.Pi

	for _, p := range b.params {
		if p.Cycle <= 0 {
			continue
		}
		idx := model.ParameterIndex(p.ID)
		if idx < 0 {
			continue
		}
		v := p.Offset + p.Peak*math.Sin(phase/p.Cycle)
		model.SetParameterValue(idx, model.ParameterValue(idx)+v*p.Weight, 1)
	}
}
