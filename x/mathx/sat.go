package mathx

import "math"

// Saturating int32 arithmetic for channel values. The tick path must
// never trap or wrap: every operation pins to the representable range.

// SatAdd32 returns a+b pinned to [math.MinInt32, math.MaxInt32].
func SatAdd32(a, b int32) int32 {
	s := int64(a) + int64(b)
	return Sat32(s)
}

// SatSub32 returns a-b pinned to the int32 range.
func SatSub32(a, b int32) int32 {
	s := int64(a) - int64(b)
	return Sat32(s)
}

// SatMul32 returns a*b pinned to the int32 range.
func SatMul32(a, b int32) int32 {
	s := int64(a) * int64(b)
	return Sat32(s)
}

// DivClamp32 returns a/b, with division by zero pinned to MaxInt32
// regardless of the dividend's sign.
func DivClamp32(a, b int32) int32 {
	if b == 0 {
		return math.MaxInt32
	}
	// MinInt32 / -1 is the one overflowing quotient.
	if a == math.MinInt32 && b == -1 {
		return math.MaxInt32
	}
	return a / b
}

// Sat32 pins a 64-bit intermediate to the int32 range.
func Sat32(v int64) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}
