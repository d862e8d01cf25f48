package common

import "math"

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Wrap returns v modulo length in [0, length). A non-positive length yields 0.
func Wrap(v, length float64) float64 {
	if length <= 0 {
		return 0
	}
	r := math.Mod(v, length)
	if r < 0 {
		r += length
	}
	if r >= length {
		r = 0
	}
	return r
}
