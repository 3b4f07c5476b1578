package curve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// easeInOut has handles that keep time monotonic while bending the value.
var easeInOut = []Point{
	{Time: 0, Value: 0},
	{Time: 300, Value: 0.1},
	{Time: 700, Value: 0.9},
	{Time: 1000, Value: 1},
}

func TestBezier_Endpoints(t *testing.T) {
	for name, eval := range map[string]Evaluator{
		"cardano": EvaluateBezierCardano,
		"search":  EvaluateBezierBinarySearch,
	} {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, 0.0, eval(easeInOut, 0), 1e-6)
			assert.InDelta(t, 1.0, eval(easeInOut, 1000), 1e-6)
		})
	}
}

func TestBezier_StrategiesAgree(t *testing.T) {
	// The subdivision search stops once it is within searchEpsilon seconds of
	// the query, so the segment spans enough time for that to be negligible.
	for i := 0; i < 100; i++ {
		tm := float64(i) * 10
		search := EvaluateBezierBinarySearch(easeInOut, tm)
		cardano := EvaluateBezierCardano(easeInOut, tm)
		assert.InDelta(t, search, cardano, 1e-4, "time %.1f", tm)
	}
}

func TestBezier_StraightHandlesMatchLinear(t *testing.T) {
	straight := []Point{{0, 0}, {1.0 / 3, 1.0 / 3}, {2.0 / 3, 2.0 / 3}, {1, 1}}

	for i := 0; i <= 20; i++ {
		tm := float64(i) / 20
		assert.InDelta(t, tm, EvaluateBezierCardano(straight, tm), 1e-6)
	}
}

func TestBezier_Monotonic(t *testing.T) {
	prev := EvaluateBezierCardano(easeInOut, 0)
	for i := 1; i <= 100; i++ {
		v := EvaluateBezierCardano(easeInOut, float64(i)*10)
		assert.GreaterOrEqual(t, v+1e-12, prev)
		prev = v
	}
}

func TestCardanoForBezier_Residual(t *testing.T) {
	x1, cx1, cx2, x2 := easeInOut[0].Time, easeInOut[1].Time, easeInOut[2].Time, easeInOut[3].Time
	a := x2 - 3*cx2 + 3*cx1 - x1
	b := 3*cx2 - 6*cx1 + 3*x1
	c := 3*cx1 - 3*x1

	for _, target := range []float64{1, 125, 500, 875, 999} {
		root := CardanoForBezier(a, b, c, x1-target)
		assert.GreaterOrEqual(t, root, 0.0)
		assert.LessOrEqual(t, root, 1.0)

		residual := a*root*root*root + b*root*root + c*root + (x1 - target)
		assert.InDelta(t, 0, residual, 1e-6, "target %v", target)
	}
}

func TestCardanoForBezier_NonMonotonicHandles(t *testing.T) {
	// The handles overshoot both ends, so time runs forward, back, then
	// forward again and several parameters share a time near 0.5.
	folded := []Point{
		{Time: 0, Value: 0},
		{Time: 1.4, Value: 1},
		{Time: -0.4, Value: 0},
		{Time: 1, Value: 1},
	}
	x1, cx1, cx2, x2 := folded[0].Time, folded[1].Time, folded[2].Time, folded[3].Time
	a := x2 - 3*cx2 + 3*cx1 - x1
	b := 3*cx2 - 6*cx1 + 3*x1
	c := 3*cx1 - 3*x1

	for _, target := range []float64{0.05, 0.3, 0.47, 0.5, 0.53, 0.7, 0.95} {
		root := CardanoForBezier(a, b, c, x1-target)
		assert.GreaterOrEqual(t, root, 0.0, "target %v", target)
		assert.LessOrEqual(t, root, 1.0, "target %v", target)

		residual := a*root*root*root + b*root*root + c*root + (x1 - target)
		assert.InDelta(t, 0, residual, 1e-6, "target %v", target)

		v := EvaluateBezierCardano(folded, target)
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "target %v", target)
		assert.GreaterOrEqual(t, v, 0.0, "target %v", target)
		assert.LessOrEqual(t, v, 1.0, "target %v", target)
	}
}

func TestQuadraticRoot(t *testing.T) {
	// 0.6t^2 + 0.6t - 0.6 = 0 has roots near 0.618 and -1.618.
	root := QuadraticRoot(0.6, 0.6, -0.6)
	assert.InDelta(t, (math.Sqrt(5)-1)/2, root, 1e-9)

	// Degenerate to linear.
	assert.InDelta(t, 0.25, QuadraticRoot(0, 4, -1), 1e-12)
	assert.InDelta(t, 2.0, QuadraticRoot(0, 0, -2), 1e-12)
}
