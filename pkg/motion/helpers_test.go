package motion

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-motion/pkg/curve"
)

// fakeModel is a flat parameter table. Unknown ids resolve to -1.
type fakeModel struct {
	ids    []string
	values []float64
	min    []float64
	max    []float64
}

func newFakeModel(ids ...string) *fakeModel {
	m := &fakeModel{}
	for _, id := range ids {
		m.add(id, 0, -100, 100)
	}
	return m
}

func (m *fakeModel) add(id string, value, lo, hi float64) {
	m.ids = append(m.ids, id)
	m.values = append(m.values, value)
	m.min = append(m.min, lo)
	m.max = append(m.max, hi)
}

func (m *fakeModel) ParameterIndex(id string) int {
	for i, v := range m.ids {
		if v == id {
			return i
		}
	}
	return -1
}

func (m *fakeModel) ParameterValue(i int) float64 { return m.values[i] }
func (m *fakeModel) ParameterMin(i int) float64   { return m.min[i] }
func (m *fakeModel) ParameterMax(i int) float64   { return m.max[i] }

func (m *fakeModel) SetParameterValue(i int, v, w float64) {
	v = m.values[i]*(1-w) + v*w
	m.values[i] = clampRange(v, m.min[i], m.max[i])
}

func (m *fakeModel) get(id string) float64 { return m.values[m.ParameterIndex(id)] }

func (m *fakeModel) set(id string, v float64) { m.values[m.ParameterIndex(id)] = v }

func pt(t, v float64) curve.Point { return curve.Point{Time: t, Value: v} }

func linear(points ...curve.Point) SegmentSpec {
	return SegmentSpec{Type: curve.Linear, Points: points}
}

func paramCurve(id string) Curve {
	return Curve{Target: TargetParameter, ID: id, FadeInTime: NoFade, FadeOutTime: NoFade}
}

func modelCurve(id string) Curve {
	return Curve{Target: TargetModel, ID: id, FadeInTime: NoFade, FadeOutTime: NoFade}
}

// constDoc returns a document whose curves each hold a constant value.
func constDoc(t *testing.T, duration float64, curves map[Curve]float64) *Document {
	t.Helper()
	doc := &Document{Duration: duration, FPS: 30}
	for c, v := range curves {
		require.NoError(t, doc.AddCurve(c, pt(0, v), linear(pt(duration, v))))
	}
	return doc
}
