// Package model provides an in-memory parameter model that motions,
// expressions and effects write into.
package model

import (
	"math"
	"sort"
)

// Parameter declares one model parameter.
type Parameter struct {
	ID      string  `json:"id"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
	// Repeat parameters wrap around their range instead of clamping.
	Repeat bool `json:"repeat,omitempty"`
}

// Model is a flat table of parameter values plus part opacities.
//
// Lookups of unknown parameter or part ids create phantom slots after the
// declared ones. Phantom parameters are unbounded and start at 0, so reads
// and writes stay well-defined for content authored against a richer model.
//
// A Model is not safe for concurrent use.
type Model struct {
	params   []Parameter
	values   []float64
	saved    []float64
	index    map[string]int
	declared int

	parts       []string
	partIndex   map[string]int
	partOpacity []float64

	opacity float64
}

// New creates a model with the declared parameters at their defaults and
// the given parts fully opaque.
func New(params []Parameter, parts ...string) *Model {
	m := &Model{
		index:     make(map[string]int, len(params)),
		partIndex: make(map[string]int, len(parts)),
		opacity:   1,
	}
	for _, p := range params {
		if _, dup := m.index[p.ID]; dup {
			continue
		}
		if p.Min > p.Max {
			p.Min, p.Max = p.Max, p.Min
		}
		m.index[p.ID] = len(m.params)
		m.params = append(m.params, p)
		m.values = append(m.values, clamp(p.Default, p.Min, p.Max))
	}
	m.declared = len(m.params)
	m.saved = append([]float64(nil), m.values...)

	for _, id := range parts {
		m.PartIndex(id)
	}
	return m
}

// ParameterIndex returns the index of id, creating a phantom slot for an
// unknown id.
func (m *Model) ParameterIndex(id string) int {
	if i, ok := m.index[id]; ok {
		return i
	}
	i := len(m.params)
	m.index[id] = i
	m.params = append(m.params, Parameter{ID: id, Min: math.Inf(-1), Max: math.Inf(1)})
	m.values = append(m.values, 0)
	m.saved = append(m.saved, 0)
	return i
}

// Lookup returns the index of id without creating a phantom slot.
func (m *Model) Lookup(id string) (int, bool) {
	i, ok := m.index[id]
	return i, ok
}

// ParameterCount returns the number of slots, phantom ones included.
func (m *Model) ParameterCount() int { return len(m.params) }

// DeclaredCount returns the number of declared parameters.
func (m *Model) DeclaredCount() int { return m.declared }

// IsPhantom reports whether index i was created on demand.
func (m *Model) IsPhantom(i int) bool { return i >= m.declared }

// Parameter returns the declaration of slot i.
func (m *Model) Parameter(i int) Parameter { return m.params[i] }

// ParameterValue returns the current value of slot i.
func (m *Model) ParameterValue(i int) float64 { return m.values[i] }

// ParameterMin returns the lower bound of slot i.
func (m *Model) ParameterMin(i int) float64 { return m.params[i].Min }

// ParameterMax returns the upper bound of slot i.
func (m *Model) ParameterMax(i int) float64 { return m.params[i].Max }

// ParameterDefault returns the default of slot i.
func (m *Model) ParameterDefault(i int) float64 { return m.params[i].Default }

// SetParameterValue blends value into slot i by weight and keeps the result
// in range.
func (m *Model) SetParameterValue(i int, value, weight float64) {
	if weight != 1 {
		value = m.values[i]*(1-weight) + value*weight
	}
	p := m.params[i]
	if p.Repeat {
		m.values[i] = m.RepeatValue(i, value)
		return
	}
	m.values[i] = clamp(value, p.Min, p.Max)
}

// AddParameterValue adds value*weight to slot i.
func (m *Model) AddParameterValue(i int, value, weight float64) {
	m.SetParameterValue(i, m.values[i]+value*weight, 1)
}

// MultiplyParameterValue scales slot i by value, weighted toward 1.
func (m *Model) MultiplyParameterValue(i int, value, weight float64) {
	m.SetParameterValue(i, m.values[i]*(1+(value-1)*weight), 1)
}

// Value returns the value of id, 0 when unknown.
func (m *Model) Value(id string) float64 {
	if i, ok := m.index[id]; ok {
		return m.values[i]
	}
	return 0
}

// SetValue writes value to id at full weight.
func (m *Model) SetValue(id string, value float64) {
	m.SetParameterValue(m.ParameterIndex(id), value, 1)
}

// IsRepeat reports whether slot i wraps around its range.
func (m *Model) IsRepeat(i int) bool { return m.params[i].Repeat }

// RepeatValue folds value into [min, max) of slot i.
func (m *Model) RepeatValue(i int, value float64) float64 {
	p := m.params[i]
	span := p.Max - p.Min
	if span <= 0 || math.IsInf(span, 0) {
		return value
	}
	v := math.Mod(value-p.Min, span)
	if v < 0 {
		v += span
	}
	return p.Min + v
}

// SaveParameters records the current values.
func (m *Model) SaveParameters() {
	copy(m.saved, m.values)
}

// LoadParameters restores the values recorded by SaveParameters.
func (m *Model) LoadParameters() {
	copy(m.values, m.saved)
}

// Reset restores every slot to its default and drops the saved values.
func (m *Model) Reset() {
	for i, p := range m.params {
		m.values[i] = clamp(p.Default, p.Min, p.Max)
	}
	copy(m.saved, m.values)
	for i := range m.partOpacity {
		m.partOpacity[i] = 1
	}
	m.opacity = 1
}

// PartIndex returns the index of part id, creating it fully opaque if new.
func (m *Model) PartIndex(id string) int {
	if i, ok := m.partIndex[id]; ok {
		return i
	}
	i := len(m.parts)
	m.partIndex[id] = i
	m.parts = append(m.parts, id)
	m.partOpacity = append(m.partOpacity, 1)
	return i
}

// PartOpacity returns the opacity of part i.
func (m *Model) PartOpacity(i int) float64 { return m.partOpacity[i] }

// SetPartOpacity sets the opacity of part i, clamped to [0, 1].
func (m *Model) SetPartOpacity(i int, opacity float64) {
	m.partOpacity[i] = clamp(opacity, 0, 1)
}

// Opacity returns the model-wide opacity.
func (m *Model) Opacity() float64 { return m.opacity }

// SetOpacity sets the model-wide opacity, clamped to [0, 1].
func (m *Model) SetOpacity(v float64) { m.opacity = clamp(v, 0, 1) }

// Snapshot is a copy of the model state keyed by id.
type Snapshot struct {
	Parameters map[string]float64 `json:"parameters"`
	Parts      map[string]float64 `json:"parts,omitempty"`
	Opacity    float64            `json:"opacity"`
}

// Snapshot copies the declared parameters, the parts and the opacity.
// Phantom slots are left out.
func (m *Model) Snapshot() Snapshot {
	s := Snapshot{
		Parameters: make(map[string]float64, m.declared),
		Opacity:    m.opacity,
	}
	for i := 0; i < m.declared; i++ {
		s.Parameters[m.params[i].ID] = m.values[i]
	}
	if len(m.parts) > 0 {
		s.Parts = make(map[string]float64, len(m.parts))
		for i, id := range m.parts {
			s.Parts[id] = m.partOpacity[i]
		}
	}
	return s
}

// IDs returns the declared parameter ids in sorted order.
func (m *Model) IDs() []string {
	ids := make([]string, 0, m.declared)
	for i := 0; i < m.declared; i++ {
		ids = append(ids, m.params[i].ID)
	}
	sort.Strings(ids)
	return ids
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
