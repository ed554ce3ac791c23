package mathx

// LerpI32 linearly interpolates between (x0,y0) and (x1,y1) at x, with
// 64-bit intermediates. x outside [x0,x1] extrapolates; callers that
// want edge-clamp semantics clamp x first. x0 == x1 returns y0.
func LerpI32(x, x0, x1, y0, y1 int32) int32 {
	if x0 == x1 {
		return y0
	}
	num := int64(y1-y0) * int64(x-x0)
	den := int64(x1 - x0)
	return Sat32(int64(y0) + num/den)
}

// MapI32 maps x in [inMin,inMax] to [outMin,outMax], clamping x to the
// input range first. inMin == inMax returns outMin.
func MapI32(x, inMin, inMax, outMin, outMax int32) int32 {
	if inMin == inMax {
		return outMin
	}
	if inMin > inMax {
		inMin, inMax = inMax, inMin
		outMin, outMax = outMax, outMin
	}
	if x < inMin {
		return outMin
	}
	if x > inMax {
		return outMax
	}
	return LerpI32(x, inMin, inMax, outMin, outMax)
}
