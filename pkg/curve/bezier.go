package curve

const (
	// searchIterations bounds the subdivision search.
	searchIterations = 20
	// searchEpsilon is the time tolerance at which the search stops.
	searchEpsilon = 0.01
)

// EvaluateBezierBinarySearch evaluates a cubic Bezier segment, inverting the
// time axis by repeated midpoint subdivision of the time control polygon.
// The control handles must keep time monotonic over the segment.
func EvaluateBezierBinarySearch(points []Point, time float64) float64 {
	return valueAt(points, searchBezierT(points, time))
}

// EvaluateBezierCardano evaluates a cubic Bezier segment, inverting the time
// axis by solving the time cubic in closed form.
func EvaluateBezierCardano(points []Point, time float64) float64 {
	x1 := points[0].Time
	cx1 := points[1].Time
	cx2 := points[2].Time
	x2 := points[3].Time

	a := x2 - 3*cx2 + 3*cx1 - x1
	b := 3*cx2 - 6*cx1 + 3*x1
	c := 3*cx1 - 3*x1
	d := x1 - time

	return valueAt(points, CardanoForBezier(a, b, c, d))
}

// valueAt runs de Casteljau on the four control points and returns the value
// coordinate at parameter t.
func valueAt(points []Point, t float64) float64 {
	p01 := lerpPoint(points[0], points[1], t)
	p12 := lerpPoint(points[1], points[2], t)
	p23 := lerpPoint(points[2], points[3], t)

	p012 := lerpPoint(p01, p12, t)
	p123 := lerpPoint(p12, p23, t)

	return lerpPoint(p012, p123, t).Value
}

// searchBezierT finds the curve parameter whose time coordinate matches time.
// Each round splits the time control polygon at its midpoint and keeps the
// half that brackets the query.
func searchBezierT(points []Point, time float64) float64 {
	x := time
	x1 := points[0].Time
	x2 := points[3].Time
	cx1 := points[1].Time
	cx2 := points[2].Time

	ta, tb := 0.0, 1.0
	t := 0.0
	found := false

	for i := 0; i < searchIterations; i++ {
		if x < x1+searchEpsilon {
			t, found = ta, true
			break
		}
		if x2-searchEpsilon < x {
			t, found = tb, true
			break
		}

		center := (cx1 + cx2) * 0.5
		cx1 = (x1 + cx1) * 0.5
		cx2 = (x2 + cx2) * 0.5
		ctrl12 := (cx1 + center) * 0.5
		ctrl21 := (cx2 + center) * 0.5
		center = (ctrl12 + ctrl21) * 0.5

		if x < center {
			tb = (ta + tb) * 0.5
			if center-searchEpsilon < x {
				t, found = tb, true
				break
			}
			x2 = center
			cx2 = ctrl12
		} else {
			ta = (ta + tb) * 0.5
			if x < center+searchEpsilon {
				t, found = ta, true
				break
			}
			x1 = center
			cx1 = ctrl21
		}
	}

	if !found {
		t = (ta + tb) * 0.5
	}
	return clamp01(t)
}
