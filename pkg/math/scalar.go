package math

import "math"

// Floor returns the greatest integer value <= x.
func Floor(x float32) float32 {
	return float32(math.Floor(float64(x)))
}

// Fract returns x - floor(x).
func Fract(x float32) float32 {
	f := x - Floor(x)
	// float32 rounding can push tiny negatives to exactly 1.
	if f >= 1 {
		return 0
	}
	return f
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Lerp interpolates between a and b.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Smoothstep is the GLSL smoothstep: Hermite interpolation of x between e0 and e1.
func Smoothstep(e0, e1, x float32) float32 {
	t := Clamp((x-e0)/(e1-e0), 0, 1)
	return t * t * (3 - 2*t)
}

// Abs returns |x|.
func Abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
