// logic/eval_table.go
package logic

import "pdmcode-go/x/mathx"

// Breakpoint tables. Axes are strictly increasing (config-validated);
// inputs outside an axis clamp to its edge value, never extrapolate.

// seg locates x on an axis: returns the lower index i such that
// x ∈ [axis[i], axis[i+1]], after clamping x into the axis range.
func seg(axis []int32, x int32) (i int, cx int32) {
	n := len(axis)
	cx = mathx.Clamp(x, axis[0], axis[n-1])
	i = 0
	for i < n-2 && cx > axis[i+1] {
		i++
	}
	return i, cx
}

func evalTable1D(t *Table1D, x int32) int32 {
	if t == nil || t.N < 1 {
		return 0
	}
	if t.N == 1 {
		return t.Y[0]
	}
	i, cx := seg(t.X[:t.N], x)
	return mathx.LerpI32(cx, t.X[i], t.X[i+1], t.Y[i], t.Y[i+1])
}

func evalTable2D(t *Table2D, x, y int32) int32 {
	if t == nil || t.NX < 1 || t.NY < 1 {
		return 0
	}
	if t.NX == 1 && t.NY == 1 {
		return t.Z[0][0]
	}

	xi, cx := 0, x
	if t.NX > 1 {
		xi, cx = seg(t.X[:t.NX], x)
	} else {
		cx = t.X[0]
	}
	yi, cy := 0, y
	if t.NY > 1 {
		yi, cy = seg(t.Y[:t.NY], y)
	} else {
		cy = t.Y[0]
	}

	x1i := mathx.Min(xi+1, t.NX-1)
	y1i := mathx.Min(yi+1, t.NY-1)

	// Interpolate along x at both y rows, then along y.
	z0 := mathx.LerpI32(cx, t.X[xi], t.X[x1i], t.Z[xi][yi], t.Z[x1i][yi])
	z1 := mathx.LerpI32(cx, t.X[xi], t.X[x1i], t.Z[xi][y1i], t.Z[x1i][y1i])
	return mathx.LerpI32(cy, t.Y[yi], t.Y[y1i], z0, z1)
}

func evalTable3D(t *Table3D, x, y, z int32) int32 {
	if t == nil || t.NX < 1 || t.NY < 1 || t.NZ < 1 {
		return 0
	}

	xi, cx := 0, t.X[0]
	if t.NX > 1 {
		xi, cx = seg(t.X[:t.NX], x)
	}
	yi, cy := 0, t.Y[0]
	if t.NY > 1 {
		yi, cy = seg(t.Y[:t.NY], y)
	}
	zi, cz := 0, t.Z[0]
	if t.NZ > 1 {
		zi, cz = seg(t.Z[:t.NZ], z)
	}

	x1 := mathx.Min(xi+1, t.NX-1)
	y1 := mathx.Min(yi+1, t.NY-1)
	z1 := mathx.Min(zi+1, t.NZ-1)

	// Bilinear on the two z slices, then linear between them.
	lo := bilinear(t, xi, x1, yi, y1, zi, cx, cy)
	hi := bilinear(t, xi, x1, yi, y1, z1, cx, cy)
	return mathx.LerpI32(cz, t.Z[zi], t.Z[z1], lo, hi)
}

func bilinear(t *Table3D, xi, x1, yi, y1, zi int, cx, cy int32) int32 {
	v0 := mathx.LerpI32(cx, t.X[xi], t.X[x1], t.V[xi][yi][zi], t.V[x1][yi][zi])
	v1 := mathx.LerpI32(cx, t.X[xi], t.X[x1], t.V[xi][y1][zi], t.V[x1][y1][zi])
	return mathx.LerpI32(cy, t.Y[yi], t.Y[y1], v0, v1)
}
