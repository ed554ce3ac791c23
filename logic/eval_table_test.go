// logic/eval_table_test.go
package logic

import "testing"

func table1D(xs, ys []int32) *Table1D {
	t := &Table1D{N: len(xs)}
	copy(t.X[:], xs)
	copy(t.Y[:], ys)
	return t
}

func TestTable1DInterpolation(t *testing.T) {
	spec := &FuncSpec{Op: OpTable1D, NumInputs: 1, Enabled: true}
	spec.Params.T1 = table1D([]int32{0, 100, 200}, []int32{0, 500, 1000})
	st := newTestState(spec)

	cases := []struct{ x, want int32 }{
		{50, 250},
		{150, 750},
		{0, 0},
		{100, 500},
		{200, 1000},
		{-50, 0},    // clamp to left edge value
		{999, 1000}, // clamp to right edge value
	}
	for _, c := range cases {
		if got := run(t, spec, st, 10, c.x); got != c.want {
			t.Errorf("table_1d(%d) = %d, want %d", c.x, got, c.want)
		}
	}
}

func TestTable1DUnevenBreakpoints(t *testing.T) {
	spec := &FuncSpec{Op: OpTable1D, NumInputs: 1, Enabled: true}
	spec.Params.T1 = table1D([]int32{0, 10, 1000}, []int32{0, 100, 200})
	st := newTestState(spec)

	if got := run(t, spec, st, 10, 5); got != 50 {
		t.Fatalf("got %d, want 50", got)
	}
	if got := run(t, spec, st, 10, 505); got != 150 {
		t.Fatalf("got %d, want 150", got)
	}
}

func TestTable1DDegenerate(t *testing.T) {
	spec := &FuncSpec{Op: OpTable1D, NumInputs: 1, Enabled: true}
	spec.Params.T1 = table1D([]int32{42}, []int32{7})
	st := newTestState(spec)
	if got := run(t, spec, st, 10, 12345); got != 7 {
		t.Fatalf("single-point table: got %d, want 7", got)
	}

	spec.Params.T1 = nil
	if got := run(t, spec, st, 10, 1); got != 0 {
		t.Fatalf("missing table: got %d, want 0", got)
	}
}

func TestTable2DBilinear(t *testing.T) {
	tab := &Table2D{NX: 2, NY: 2}
	tab.X = [MaxAxis]int32{0, 100}
	tab.Y = [MaxAxis]int32{0, 100}
	tab.Z[0][0] = 0
	tab.Z[1][0] = 100
	tab.Z[0][1] = 200
	tab.Z[1][1] = 300

	spec := &FuncSpec{Op: OpTable2D, NumInputs: 2, Enabled: true}
	spec.Params.T2 = tab
	st := newTestState(spec)

	cases := []struct{ x, y, want int32 }{
		{0, 0, 0},
		{100, 0, 100},
		{0, 100, 200},
		{100, 100, 300},
		{50, 50, 150},  // centre
		{50, 0, 50},    // x midpoint on y=0 row
		{0, 50, 100},   // y midpoint on x=0 column
		{500, 500, 300}, // clamp both axes
		{-10, -10, 0},
	}
	for _, c := range cases {
		if got := run(t, spec, st, 10, c.x, c.y); got != c.want {
			t.Errorf("table_2d(%d,%d) = %d, want %d", c.x, c.y, got, c.want)
		}
	}
}

func TestTable3DTrilinear(t *testing.T) {
	tab := &Table3D{NX: 2, NY: 2, NZ: 2}
	tab.X = [MaxAxis3]int32{0, 100}
	tab.Y = [MaxAxis3]int32{0, 100}
	tab.Z = [MaxAxis3]int32{0, 100}
	// V = x + 2y + 4z at the corners (linear, so interpolation is exact).
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				tab.V[i][j][k] = int32(i*100 + j*200 + k*400)
			}
		}
	}

	spec := &FuncSpec{Op: OpTable3D, NumInputs: 3, Enabled: true}
	spec.Params.T3 = tab
	st := newTestState(spec)

	cases := []struct{ x, y, z, want int32 }{
		{0, 0, 0, 0},
		{100, 100, 100, 700},
		{50, 50, 50, 350},
		{100, 0, 50, 300},
		{999, 999, 999, 700}, // clamp all axes
	}
	for _, c := range cases {
		if got := run(t, spec, st, 10, c.x, c.y, c.z); got != c.want {
			t.Errorf("table_3d(%d,%d,%d) = %d, want %d", c.x, c.y, c.z, got, c.want)
		}
	}
}
