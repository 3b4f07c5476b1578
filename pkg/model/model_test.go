package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-motion/pkg/curve"
	"github.com/teslashibe/go-motion/pkg/motion"
)

var (
	_ motion.Model       = (*Model)(nil)
	_ motion.RepeatModel = (*Model)(nil)
	_ motion.PartModel   = (*Model)(nil)
)

func TestNewAppliesDefaults(t *testing.T) {
	m := DefaultDefinition().Build()

	assert.Equal(t, 16, m.DeclaredCount())
	assert.Equal(t, 1.0, m.Value(ParamEyeLOpen))
	assert.Equal(t, 0.0, m.Value(ParamAngleX))
	assert.Equal(t, 1.0, m.Opacity())
}

func TestWeightedWriteAndClamp(t *testing.T) {
	m := New([]Parameter{{ID: "A", Min: -1, Max: 1}})
	i := m.ParameterIndex("A")

	m.SetParameterValue(i, 1, 0.25)
	assert.InDelta(t, 0.25, m.ParameterValue(i), 1e-12)

	m.SetParameterValue(i, 5, 1)
	assert.Equal(t, 1.0, m.ParameterValue(i))

	m.AddParameterValue(i, -1, 0.5)
	assert.InDelta(t, 0.5, m.ParameterValue(i), 1e-12)

	m.MultiplyParameterValue(i, 3, 0.5)
	assert.InDelta(t, 1.0, m.ParameterValue(i), 1e-12)
}

func TestPhantomParameters(t *testing.T) {
	m := New([]Parameter{{ID: "A", Min: 0, Max: 1}})

	_, ok := m.Lookup("Ghost")
	assert.False(t, ok)

	i := m.ParameterIndex("Ghost")
	assert.Equal(t, 1, i)
	assert.True(t, m.IsPhantom(i))
	assert.Equal(t, i, m.ParameterIndex("Ghost"))

	m.SetParameterValue(i, 42, 1)
	assert.Equal(t, 42.0, m.ParameterValue(i))
	assert.True(t, math.IsInf(m.ParameterMin(i), -1))

	snap := m.Snapshot()
	assert.NotContains(t, snap.Parameters, "Ghost")
	assert.Contains(t, snap.Parameters, "A")
}

func TestRepeatParameterWraps(t *testing.T) {
	m := New([]Parameter{{ID: "Spin", Min: -180, Max: 180, Repeat: true}})
	i := m.ParameterIndex("Spin")

	assert.True(t, m.IsRepeat(i))
	assert.InDelta(t, -170.0, m.RepeatValue(i, 190), 1e-9)
	assert.InDelta(t, 170.0, m.RepeatValue(i, -190), 1e-9)

	m.SetParameterValue(i, 540, 1)
	assert.InDelta(t, -180.0, m.ParameterValue(i), 1e-9)
}

func TestSaveLoadParameters(t *testing.T) {
	m := New([]Parameter{{ID: "A", Min: 0, Max: 10}})
	m.SetValue("A", 3)
	m.SaveParameters()

	m.SetValue("A", 7)
	m.LoadParameters()
	assert.Equal(t, 3.0, m.Value("A"))

	m.Reset()
	assert.Equal(t, 0.0, m.Value("A"))
}

func TestParts(t *testing.T) {
	m := New(nil, "PartArm")
	i := m.PartIndex("PartArm")
	assert.Equal(t, 1.0, m.PartOpacity(i))

	m.SetPartOpacity(i, 1.5)
	assert.Equal(t, 1.0, m.PartOpacity(i))
	m.SetPartOpacity(i, 0.3)
	assert.Equal(t, 0.3, m.Snapshot().Parts["PartArm"])
}

func TestParseDefinition(t *testing.T) {
	d, err := ParseDefinition([]byte(`{
		"parameters": [{"id": "ParamX", "min": -1, "max": 1, "default": 0.5}],
		"parts": ["PartHead"],
		"eyeBlink": ["ParamX"]
	}`))
	require.NoError(t, err)

	m := d.Build()
	assert.Equal(t, 0.5, m.Value("ParamX"))
	assert.Equal(t, []string{"ParamX"}, d.EyeBlink)

	_, err = ParseDefinition([]byte(`{"parameters": []}`))
	assert.Error(t, err)
}

// A keyframe motion drives the model through the motion.Model interface,
// including clamping and repeat folding.
func TestDrivenByKeyframeMotion(t *testing.T) {
	doc := &motion.Document{Duration: 1, FPS: 30}
	require.NoError(t, doc.AddCurve(
		motion.Curve{Target: motion.TargetParameter, ID: ParamAngleX, FadeInTime: motion.NoFade, FadeOutTime: motion.NoFade},
		curve.Point{Time: 0, Value: 0},
		motion.SegmentSpec{Type: curve.Linear, Points: []curve.Point{{Time: 1, Value: 60}}},
	))
	require.NoError(t, doc.AddCurve(
		motion.Curve{Target: motion.TargetPartOpacity, ID: "PartArm", FadeInTime: motion.NoFade, FadeOutTime: motion.NoFade},
		curve.Point{Time: 0, Value: 0.5},
		motion.SegmentSpec{Type: curve.Stepped, Points: []curve.Point{{Time: 1, Value: 0}}},
	))

	mo, err := motion.NewKeyframeMotion(doc)
	require.NoError(t, err)

	m := DefaultDefinition().Build()
	entry := motion.NewEntry(mo)
	mo.Update(m, entry, 0)
	mo.Update(m, entry, 0.75)

	assert.Equal(t, 30.0, m.Value(ParamAngleX))
	assert.Equal(t, 0.5, m.PartOpacity(m.PartIndex("PartArm")))
}
