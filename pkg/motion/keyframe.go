package motion

import (
	"fmt"

	"github.com/teslashibe/go-motion/pkg/curve"
)

// Model curve ids with special meaning.
const (
	EffectEyeBlink = "EyeBlink"
	EffectLipSync  = "LipSync"
	IDOpacity      = "Opacity"
)

// KeyframeMotion plays the curves of a Document.
type KeyframeMotion struct {
	base

	doc *Document

	eyeBlinkIDs []string
	lipSyncIDs  []string

	modelOpacity float64
	previousLoop bool
	lastWeight   float64

	// scratch, reset every update
	blinkOverridden []bool
	lipOverridden   []bool
}

// NewKeyframeMotion validates doc and wraps it for playback. Fade times and
// the loop flag come from doc unless overridden by options.
func NewKeyframeMotion(doc *Document, opts ...Option) (*KeyframeMotion, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrInvalidDocument)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	s := newSettings(opts)
	m := &KeyframeMotion{
		base:         s.base(doc.FadeInTime, doc.FadeOutTime, doc.Loop),
		doc:          doc,
		modelOpacity: 1,
	}
	m.self = m
	m.previousLoop = m.loop
	m.SetEyeBlinkIDs(s.eyeBlink...)
	m.SetLipSyncIDs(s.lipSync...)
	return m, nil
}

// Document returns the motion's source document.
func (m *KeyframeMotion) Document() *Document { return m.doc }

// Duration returns the motion length, or -1 while looping.
func (m *KeyframeMotion) Duration() float64 {
	if m.loop {
		return -1
	}
	return m.doc.Duration
}

// LoopDuration returns the length of one pass through the curves.
func (m *KeyframeMotion) LoopDuration() float64 {
	return m.doc.Duration
}

// FiredEvents returns event labels with since < fireTime <= now.
func (m *KeyframeMotion) FiredEvents(since, now float64) []string {
	return m.doc.FiredEvents(since, now)
}

// ModelOpacity returns the value of the most recently evaluated Opacity
// model curve, 1 if the motion has none.
func (m *KeyframeMotion) ModelOpacity() float64 { return m.modelOpacity }

// LastWeight returns the fade weight used by the most recent update.
func (m *KeyframeMotion) LastWeight() float64 { return m.lastWeight }

// SetEyeBlinkIDs replaces the parameters driven by the EyeBlink model curve.
func (m *KeyframeMotion) SetEyeBlinkIDs(ids ...string) {
	m.eyeBlinkIDs = append([]string(nil), ids...)
	m.blinkOverridden = make([]bool, len(ids))
}

// SetLipSyncIDs replaces the parameters driven by the LipSync model curve.
func (m *KeyframeMotion) SetLipSyncIDs(ids ...string) {
	m.lipSyncIDs = append([]string(nil), ids...)
	m.lipOverridden = make([]bool, len(ids))
}

// Update advances entry to now and applies the motion to model.
func (m *KeyframeMotion) Update(model Model, entry *Entry, now float64) {
	if entry == nil || !entry.available || entry.finished {
		return
	}

	m.setup(entry, now)
	w := m.fadeWeight(entry, now)
	m.apply(model, entry, now, w)

	if entry.endTime >= 0 && entry.endTime < now {
		entry.finished = true
	}
}

// apply evaluates every curve at the entry's playback time and writes the
// results. Model curves run first so their blink and lip-sync scalars are
// known when parameter curves are applied.
func (m *KeyframeMotion) apply(model Model, entry *Entry, now, fadeWeight float64) {
	if m.previousLoop != m.loop {
		m.adjustEndTime(entry)
		m.previousLoop = m.loop
	}

	elapsed := now - entry.startTime
	if elapsed < 0 {
		elapsed = 0
	}

	doc := m.doc
	time := elapsed
	duration := doc.Duration
	correct := m.behavior == BehaviorV2 && m.loop

	if m.loop {
		if m.behavior == BehaviorV2 && doc.FPS > 0 {
			duration += 1 / doc.FPS
		}
		if duration > 0 {
			for time > duration {
				time -= duration
			}
		} else {
			time = 0
		}
	}

	fadeIn := curveFade(m.fadeIn, now-entry.fadeInStartTime)
	fadeOut := 1.0
	if m.fadeOut > 0 && entry.endTime >= 0 {
		fadeOut = curveFade(m.fadeOut, entry.endTime-now)
	}

	var (
		blink, lip       float64
		hasBlink, hasLip bool
	)

	for ci, c := range doc.Curves {
		if c.Target != TargetModel {
			continue
		}
		v := doc.evaluateCurve(ci, time, correct, duration)
		switch c.ID {
		case EffectEyeBlink:
			blink, hasBlink = v, true
		case EffectLipSync:
			lip, hasLip = v, true
		case IDOpacity:
			m.modelOpacity = v
		}
	}

	clear(m.blinkOverridden)
	clear(m.lipOverridden)
	repeat, _ := model.(RepeatModel)

	for ci, c := range doc.Curves {
		if c.Target != TargetParameter {
			continue
		}
		idx := model.ParameterIndex(c.ID)
		if idx < 0 {
			continue
		}

		source := model.ParameterValue(idx)
		v := doc.evaluateCurve(ci, time, correct, duration)

		if hasBlink {
			if i := indexOf(m.eyeBlinkIDs, c.ID); i >= 0 {
				v *= blink
				m.blinkOverridden[i] = true
			}
		}
		if hasLip {
			if i := indexOf(m.lipSyncIDs, c.ID); i >= 0 {
				v += lip
				m.lipOverridden[i] = true
			}
		}

		if repeat != nil && repeat.IsRepeat(idx) {
			v = repeat.RepeatValue(idx, v)
		}
		v = clampRange(v, model.ParameterMin(idx), model.ParameterMax(idx))

		w := fadeWeight
		if c.HasFadeOverride() {
			fin, fout := fadeIn, fadeOut
			if c.FadeInTime >= 0 {
				fin = curveFade(c.FadeInTime, now-entry.fadeInStartTime)
			}
			if c.FadeOutTime >= 0 {
				fout = 1
				if c.FadeOutTime > 0 && entry.endTime >= 0 {
					fout = curveFade(c.FadeOutTime, entry.endTime-now)
				}
			}
			w = clamp01(m.weight * fin * fout)
		}

		model.SetParameterValue(idx, source+(v-source)*w, 1)
	}

	if hasBlink {
		m.applyDefault(model, m.eyeBlinkIDs, m.blinkOverridden, blink, fadeWeight)
	}
	if hasLip {
		m.applyDefault(model, m.lipSyncIDs, m.lipOverridden, lip, fadeWeight)
	}

	parts, _ := model.(PartModel)
	for ci, c := range doc.Curves {
		if c.Target != TargetPartOpacity {
			continue
		}
		v := doc.evaluateCurve(ci, time, correct, duration)
		if parts != nil {
			if idx := parts.PartIndex(c.ID); idx >= 0 {
				parts.SetPartOpacity(idx, v)
			}
			continue
		}
		if idx := model.ParameterIndex(c.ID); idx >= 0 {
			model.SetParameterValue(idx, v, 1)
		}
	}

	if elapsed >= duration {
		if m.loop {
			m.nextLoop(entry, now, time)
		} else {
			m.finishedCallback()
			entry.finished = true
		}
	}

	m.lastWeight = fadeWeight
}

// applyDefault blends scalar into every target id no parameter curve drove.
func (m *KeyframeMotion) applyDefault(model Model, ids []string, overridden []bool, scalar, weight float64) {
	for i, id := range ids {
		if overridden[i] {
			continue
		}
		idx := model.ParameterIndex(id)
		if idx < 0 {
			continue
		}
		source := model.ParameterValue(idx)
		model.SetParameterValue(idx, source+(scalar-source)*weight, 1)
	}
}

// nextLoop rewinds the entry for another pass.
func (m *KeyframeMotion) nextLoop(entry *Entry, now, time float64) {
	switch m.behavior {
	case BehaviorV1:
		entry.startTime = now
		if m.loopFadeIn {
			entry.fadeInStartTime = now
		}
	default:
		entry.startTime = now - time
		if m.loopFadeIn {
			entry.fadeInStartTime = now - time
		}
		m.began()
	}
}

func curveFade(seconds, elapsed float64) float64 {
	return curve.FadeProgress(elapsed, seconds)
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func clampRange(v, lo, hi float64) float64 {
	if lo > hi {
		return v
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
