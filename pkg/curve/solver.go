package curve

import "math"

// epsilon below which a leading coefficient is treated as zero.
const epsilon = 0.00001

// QuadraticRoot returns the real root of ax^2 + bx + c = 0 nearest the middle
// of the unit interval, degrading to the linear solution when a is
// effectively zero. A negative discriminant is treated as zero so the result
// stays finite.
func QuadraticRoot(a, b, c float64) float64 {
	if math.Abs(a) < epsilon {
		if math.Abs(b) < epsilon {
			return -c
		}
		return -c / b
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		disc = 0
	}
	sq := math.Sqrt(disc)
	r1 := (-b - sq) / (2 * a)
	r2 := (-b + sq) / (2 * a)
	if math.Abs(r1-0.5) <= math.Abs(r2-0.5) {
		return r1
	}
	return r2
}

// CardanoForBezier solves at^3 + bt^2 + ct + d = 0 for the root that belongs
// to a Bezier parameter, returning it clamped to [0, 1].
//
// When several real roots exist the one nearest the middle of the unit
// interval wins, which is the root a monotonic time polygon produces.
func CardanoForBezier(a, b, c, d float64) float64 {
	if math.Abs(a) < epsilon {
		return clamp01(QuadraticRoot(b, c, d))
	}

	ba := b / a
	ca := c / a
	da := d / a

	p := (3*ca - ba*ba) / 3
	p3 := p / 3
	q := (2*ba*ba*ba - 9*ba*ca + 27*da) / 27
	q2 := q / 2
	disc := q2*q2 + p3*p3*p3

	const center = 0.5
	const threshold = center + 0.01
	shift := ba / 3

	switch {
	case disc < 0:
		// Three distinct real roots.
		mp3 := -p / 3
		r := math.Sqrt(mp3 * mp3 * mp3)
		cosPhi := clamp(-q/(2*r), -1, 1)
		phi := math.Acos(cosPhi)
		t1 := 2 * math.Cbrt(r)

		root1 := t1*math.Cos(phi/3) - shift
		if math.Abs(root1-center) < threshold {
			return clamp01(root1)
		}
		root2 := t1*math.Cos((phi+2*math.Pi)/3) - shift
		if math.Abs(root2-center) < threshold {
			return clamp01(root2)
		}
		root3 := t1*math.Cos((phi+4*math.Pi)/3) - shift
		return clamp01(root3)

	case disc == 0:
		// A single and a double root.
		var u1 float64
		if q2 < 0 {
			u1 = math.Cbrt(-q2)
		} else {
			u1 = -math.Cbrt(q2)
		}
		root1 := 2*u1 - shift
		if math.Abs(root1-center) < threshold {
			return clamp01(root1)
		}
		return clamp01(-u1 - shift)
	}

	// One real root.
	sd := math.Sqrt(disc)
	u1 := math.Cbrt(sd - q2)
	v1 := math.Cbrt(sd + q2)
	return clamp01(u1 - v1 - shift)
}
