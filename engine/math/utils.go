package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// ScaleChannel maps v in [0, extent) linearly onto [0, 255] with integer
// truncation, the way an OpenCL `int` expression `v * 255 / extent` does.
func ScaleChannel[T constraints.Integer](v, extent T) uint8 {
	if extent <= 0 {
		return 0
	}
	return uint8(Clamp(int64(v)*255/int64(extent), 0, 255))
}
