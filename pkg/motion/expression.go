package motion

import "fmt"

// BlendMode says how an expression parameter combines with the model value.
type BlendMode int

const (
	// BlendAdditive adds the expression value.
	BlendAdditive BlendMode = iota
	// BlendMultiply multiplies by the expression value.
	BlendMultiply
	// BlendOverwrite replaces the value.
	BlendOverwrite
)

// String returns the blend mode token used in expression files.
func (b BlendMode) String() string {
	switch b {
	case BlendMultiply:
		return "Multiply"
	case BlendOverwrite:
		return "Overwrite"
	default:
		return "Add"
	}
}

// ParseBlendMode maps an expression file token to a BlendMode. Unknown or
// empty tokens are additive.
func ParseBlendMode(token string) BlendMode {
	switch token {
	case "Multiply":
		return BlendMultiply
	case "Overwrite":
		return BlendOverwrite
	default:
		return BlendAdditive
	}
}

// Neutral accumulator values.
const (
	DefaultAdditive = 0.0
	DefaultMultiply = 1.0
)

// DefaultExpressionFade is the fade length used when a file omits one.
const DefaultExpressionFade = 1.0

// ExpressionParameter is one authored parameter of an expression.
type ExpressionParameter struct {
	ID    string
	Value float64
	Blend BlendMode
}

// ExpressionDocument is a parsed expression.
type ExpressionDocument struct {
	FadeInTime  float64
	FadeOutTime float64
	Parameters  []ExpressionParameter
}

// ExpressionMotion applies a fixed set of parameter offsets, factors and
// overrides. It is usually mixed through an ExpressionBlender; queued on a
// plain Queue it writes its parameters directly.
type ExpressionMotion struct {
	base

	params []ExpressionParameter
}

// NewExpressionMotion wraps doc for playback.
func NewExpressionMotion(doc *ExpressionDocument, opts ...Option) (*ExpressionMotion, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil expression", ErrInvalidDocument)
	}
	if doc.FadeInTime < 0 || doc.FadeOutTime < 0 {
		return nil, fmt.Errorf("%w: negative expression fade time", ErrInvalidDocument)
	}

	s := newSettings(opts)
	m := &ExpressionMotion{
		base:   s.base(doc.FadeInTime, doc.FadeOutTime, false),
		params: append([]ExpressionParameter(nil), doc.Parameters...),
	}
	m.self = m
	return m, nil
}

// Parameters returns the authored parameters.
func (m *ExpressionMotion) Parameters() []ExpressionParameter {
	return m.params
}

// Duration is unbounded for expressions.
func (m *ExpressionMotion) Duration() float64 { return -1 }

// LoopDuration is unbounded for expressions.
func (m *ExpressionMotion) LoopDuration() float64 { return -1 }

// FiredEvents always returns nil, expressions carry no events.
func (m *ExpressionMotion) FiredEvents(_, _ float64) []string { return nil }

// Update writes the expression straight into model at its fade weight.
func (m *ExpressionMotion) Update(model Model, entry *Entry, now float64) {
	if entry == nil || !entry.available || entry.finished {
		return
	}

	m.setup(entry, now)
	w := m.fadeWeight(entry, now)

	for _, p := range m.params {
		idx := model.ParameterIndex(p.ID)
		if idx < 0 {
			continue
		}
		cur := model.ParameterValue(idx)
		switch p.Blend {
		case BlendAdditive:
			model.SetParameterValue(idx, cur+p.Value*w, 1)
		case BlendMultiply:
			model.SetParameterValue(idx, cur*(1+(p.Value-1)*w), 1)
		case BlendOverwrite:
			model.SetParameterValue(idx, p.Value, w)
		}
	}

	if entry.endTime >= 0 && entry.endTime < now {
		entry.finished = true
	}
}

// contribution returns the accumulator triple this expression produces for
// id given the model's current value, and whether the expression names id.
func (m *ExpressionMotion) contribution(id string, current float64) (ParameterValue, bool) {
	for _, p := range m.params {
		if p.ID != id {
			continue
		}
		v := ParameterValue{ID: id, Additive: DefaultAdditive, Multiply: DefaultMultiply, Overwrite: current}
		switch p.Blend {
		case BlendAdditive:
			v.Additive = p.Value
		case BlendMultiply:
			v.Multiply = p.Value
		case BlendOverwrite:
			v.Overwrite = p.Value
		}
		return v, true
	}
	return ParameterValue{ID: id, Additive: DefaultAdditive, Multiply: DefaultMultiply, Overwrite: current}, false
}
