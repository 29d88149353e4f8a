package wavefront

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"
)

func randomGrid(rng *rand.Rand, h, w int) [][]complex128 {
	g := make([][]complex128, h)
	for i := range g {
		g[i] = make([]complex128, w)
		for j := range g[i] {
			g[i][j] = complex((rng.Float64()-0.5)*2.0, (rng.Float64()-0.5)*2.0)
		}
	}
	return g
}

func maxAbs(g [][]complex128) float64 {
	m := 0.0
	for i := range g {
		for _, v := range g[i] {
			m = math.Max(m, cmplx.Abs(v))
		}
	}
	return m
}

func maxAbsDiff(a, b [][]complex128) float64 {
	m := 0.0
	for i := range a {
		for j := range a[i] {
			m = math.Max(m, cmplx.Abs(a[i][j]-b[i][j]))
		}
	}
	return m
}

func assertGridsClose(t *testing.T, got, want [][]complex128, relTol float64) {
	t.Helper()

	scale := maxAbs(want)
	if scale == 0 {
		scale = 1
	}
	if d := maxAbsDiff(got, want); d > relTol*scale {
		t.Fatalf("grids differ: max abs diff %g exceeds %g", d, relTol*scale)
	}
}

// gaussianField is a smooth, band-limited test beam centered on the grid.
func gaussianField(n int, dx, waist float64) Field {
	xs := SpatialAxis(n, dx)
	x, y := Meshgrid(xs, xs)
	e := newComplexGrid(n)
	for i := range e {
		for j := range e[i] {
			r2 := x[i][j]*x[i][j] + y[i][j]*y[i][j]
			e[i][j] = complex(math.Exp(-r2/(waist*waist)), 0)
		}
	}
	return Field{E: e, X: x, Y: y}
}
