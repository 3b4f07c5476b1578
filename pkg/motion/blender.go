package motion

// ParameterValue is the blended accumulator for one expression parameter.
type ParameterValue struct {
	ID        string
	Additive  float64
	Multiply  float64
	Overwrite float64
}

// Result returns the value the accumulator commits to the model.
func (v ParameterValue) Result() float64 {
	return (v.Overwrite + v.Additive) * v.Multiply
}

func (v ParameterValue) lerp(to ParameterValue, w float64) ParameterValue {
	return ParameterValue{
		ID:        v.ID,
		Additive:  v.Additive*(1-w) + to.Additive*w,
		Multiply:  v.Multiply*(1-w) + to.Multiply*w,
		Overwrite: v.Overwrite*(1-w) + to.Overwrite*w,
	}
}

// ExpressionBlender mixes any number of concurrently fading expressions into
// one set of parameter values. Entries are kept oldest first; the oldest is
// the base layer and each newer one crossfades over it with its own weight.
//
// An ExpressionBlender is not safe for concurrent use.
type ExpressionBlender struct {
	entries []*Entry

	values []ParameterValue
	index  map[string]int

	// scratch, sized to values
	touched []bool

	weight float64
}

// NewExpressionBlender returns an empty blender.
func NewExpressionBlender() *ExpressionBlender {
	return &ExpressionBlender{index: make(map[string]int)}
}

// Start queues m on top of the active expressions and returns its handle.
// Older expressions are not faded out; they are dropped once m is fully in.
func (b *ExpressionBlender) Start(m *ExpressionMotion) (Handle, error) {
	if m == nil {
		return Handle{}, ErrNilMotion
	}
	e := NewEntry(m)
	b.entries = append(b.entries, e)
	return e.handle, nil
}

// Entries returns the active entries, oldest first.
func (b *ExpressionBlender) Entries() []*Entry { return b.entries }

// Len returns the number of active entries.
func (b *ExpressionBlender) Len() int { return len(b.entries) }

// IsFinished reports whether no expression is active.
func (b *ExpressionBlender) IsFinished() bool { return len(b.entries) == 0 }

// Values returns the tracked accumulators in first-reference order.
func (b *ExpressionBlender) Values() []ParameterValue { return b.values }

// Value returns the accumulator for id.
func (b *ExpressionBlender) Value(id string) (ParameterValue, bool) {
	i, ok := b.index[id]
	if !ok {
		return ParameterValue{}, false
	}
	return b.values[i], true
}

// Weight returns the layer weight used by the most recent commit.
func (b *ExpressionBlender) Weight() float64 { return b.weight }

// StopAll requests a fade-out on every active expression.
func (b *ExpressionBlender) StopAll() {
	for _, e := range b.entries {
		e.SetFadeOut(e.motion.FadeOutTime())
	}
}

// Update blends the active expressions at now and commits the result to
// model. It reports whether anything was written.
func (b *ExpressionBlender) Update(model Model, now float64) bool {
	b.weight = 0
	if len(b.entries) == 0 {
		return false
	}

	// Register every parameter any active entry references.
	for _, e := range b.entries {
		for _, p := range e.motion.(*ExpressionMotion).params {
			if _, ok := b.index[p.ID]; ok {
				continue
			}
			if model.ParameterIndex(p.ID) < 0 {
				continue
			}
			b.index[p.ID] = len(b.values)
			b.values = append(b.values, ParameterValue{
				ID:        p.ID,
				Additive:  DefaultAdditive,
				Multiply:  DefaultMultiply,
				Overwrite: model.ParameterValue(model.ParameterIndex(p.ID)),
			})
			b.touched = append(b.touched, false)
		}
	}
	b.markTouched()

	var (
		layer     float64
		newest    float64
		anyActive bool
	)
	for i, e := range b.entries {
		m := e.motion.(*ExpressionMotion)
		if e.triggeredFadeOut {
			e.StartFadeOut(e.fadeOutSeconds, now)
		}

		m.setup(e, now)
		w := m.fadeWeight(e, now)
		layer += curveFade(m.fadeIn, now-e.fadeInStartTime)

		for vi := range b.values {
			if !b.touched[vi] {
				continue
			}
			v := &b.values[vi]
			idx := model.ParameterIndex(v.ID)
			contrib, _ := m.contribution(v.ID, model.ParameterValue(idx))
			if i == 0 {
				*v = contrib
				continue
			}
			*v = v.lerp(contrib, w)
		}

		if e.endTime >= 0 && e.endTime < now {
			e.finished = true
		}
		newest = w
		anyActive = true
	}

	if layer > 1 {
		layer = 1
	}
	b.weight = layer

	if anyActive {
		for vi, v := range b.values {
			if !b.touched[vi] {
				continue
			}
			idx := model.ParameterIndex(v.ID)
			if idx < 0 {
				continue
			}
			model.SetParameterValue(idx, v.Result(), layer)
		}
	}

	b.prune(newest)
	return anyActive
}

// markTouched flags the accumulators referenced by at least one active
// entry. Untouched accumulators keep their last value and are not written.
func (b *ExpressionBlender) markTouched() {
	clear(b.touched)
	for _, e := range b.entries {
		for _, p := range e.motion.(*ExpressionMotion).params {
			if i, ok := b.index[p.ID]; ok {
				b.touched[i] = true
			}
		}
	}
}

// prune removes finished entries and, once the newest entry is fully faded
// in, every entry older than it.
func (b *ExpressionBlender) prune(newestWeight float64) {
	if len(b.entries) > 1 && newestWeight >= 1 {
		last := b.entries[len(b.entries)-1]
		if !last.finished {
			logger().Debug("expression fully faded in, dropping predecessors", "dropped", len(b.entries)-1)
			b.entries[0] = last
			clear(b.entries[1:])
			b.entries = b.entries[:1]
		}
	}

	kept := b.entries[:0]
	for _, e := range b.entries {
		if !e.finished {
			kept = append(kept, e)
		}
	}
	clear(b.entries[len(kept):])
	b.entries = kept
}
