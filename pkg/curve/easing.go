package curve

import "math"

// EaseSine maps fade progress x onto a quarter sine wave. x is clamped to
// [0, 1] first, so the result is always in [0, 1].
func EaseSine(x float64) float64 {
	x = clamp01(x)
	if x == 1 {
		return 1
	}
	return math.Sin(x * math.Pi / 2)
}

// FadeProgress returns the eased fade factor for elapsed seconds out of a
// fade lasting seconds. A non-positive fade length is an instant fade.
func FadeProgress(elapsed, seconds float64) float64 {
	if seconds <= 0 {
		return 1
	}
	return EaseSine(elapsed / seconds)
}
