package wavefront

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Field is a sampled monochromatic wavefront. E holds the complex amplitudes with the
// row index running along y and the column index along x. X and Y are the matching
// meshgrids of physical coordinates in meters: X[i][j] = xs[j] and Y[i][j] = ys[i].
//
// Operators never modify a Field in place; each returns a newly allocated one.
type Field struct {
	E [][]complex128
	X [][]float64
	Y [][]float64
}

// NewField validates that e, x and y are non-empty, square and the same size.
func NewField(e [][]complex128, x, y [][]float64) (Field, error) {
	n := len(e)
	if n == 0 {
		return Field{}, ErrEmptyGrid
	}
	for i := range e {
		if len(e[i]) != n {
			return Field{}, fmt.Errorf("samples row %d has %d columns, want %d: %w", i, len(e[i]), n, ErrNotSquare)
		}
	}
	if err := checkReal(x, n); err != nil {
		return Field{}, fmt.Errorf("x axis: %w", err)
	}
	if err := checkReal(y, n); err != nil {
		return Field{}, fmt.Errorf("y axis: %w", err)
	}
	return Field{E: e, X: x, Y: y}, nil
}

func checkReal(m [][]float64, n int) error {
	if len(m) != n {
		return ErrShapeMismatch
	}
	for i := range m {
		if len(m[i]) != n {
			return ErrShapeMismatch
		}
	}
	return nil
}

// N returns the number of samples along each axis.
func (f Field) N() int { return len(f.E) }

// Dx returns the sample spacing in meters, taken from the x axis.
func (f Field) Dx() float64 {
	if len(f.X) == 0 || len(f.X[0]) < 2 {
		return 0
	}
	return f.X[0][1] - f.X[0][0]
}

// Extent returns the first and last x coordinate of the grid.
func (f Field) Extent() (lo, hi float64) {
	if len(f.X) == 0 || len(f.X[0]) == 0 {
		return 0, 0
	}
	row := f.X[0]
	return row[0], row[len(row)-1]
}

// Clone returns a deep copy of f.
func (f Field) Clone() Field {
	return Field{E: cloneComplex(f.E), X: cloneReal(f.X), Y: cloneReal(f.Y)}
}

// withSamples returns a field sharing nothing with f that carries e on copies of f's axes.
func (f Field) withSamples(e [][]complex128) Field {
	return Field{E: e, X: cloneReal(f.X), Y: cloneReal(f.Y)}
}

// Linspace returns n evenly spaced values from start to end inclusive, matching numpy.
func Linspace(start, end float64, n int) []float64 {
	if n <= 1 {
		return []float64{start}
	}
	return floats.Span(make([]float64, n), start, end)
}

// Meshgrid expands the 1D axes into the pair of 2D coordinate grids used by Field.
func Meshgrid(xs, ys []float64) (x, y [][]float64) {
	x = make([][]float64, len(ys))
	y = make([][]float64, len(ys))
	for i := range ys {
		x[i] = make([]float64, len(xs))
		y[i] = make([]float64, len(xs))
		copy(x[i], xs)
		for j := range xs {
			y[i][j] = ys[i]
		}
	}
	return x, y
}

// SpatialAxis returns the origin-centered coordinates -N/2*dx ... (N/2-1)*dx.
func SpatialAxis(n int, dx float64) []float64 {
	xs := Linspace(-float64(n)/2, float64(n)/2-1, n)
	floats.Scale(dx, xs)
	return xs
}

// FrequencyAxis returns the spatial-frequency samples dual to a spatial axis of n points
// spaced dx apart: fxMax = 1/(2dx), df = fxMax/n, fx = linspace(-fxMax, fxMax-df, n).
func FrequencyAxis(n int, dx float64) []float64 {
	fxMax := 1.0 / (2.0 * dx)
	dfx := fxMax / float64(n)
	return Linspace(-fxMax, fxMax-dfx, n)
}

// FrequencyAxes returns the meshgridded fx and fy for a square grid.
func FrequencyAxes(n int, dx float64) (fx, fy [][]float64) {
	f := FrequencyAxis(n, dx)
	return Meshgrid(f, f)
}

func newComplexGrid(n int) [][]complex128 {
	m := make([][]complex128, n)
	for i := range m {
		m[i] = make([]complex128, n)
	}
	return m
}

func newRealGrid(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

func cloneComplex(m [][]complex128) [][]complex128 {
	out := make([][]complex128, len(m))
	for i := range m {
		out[i] = make([]complex128, len(m[i]))
		copy(out[i], m[i])
	}
	return out
}

func cloneReal(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i := range m {
		out[i] = make([]float64, len(m[i]))
		copy(out[i], m[i])
	}
	return out
}

// scaleGrid returns a copy of m with every element multiplied by s.
func scaleGrid(m [][]float64, s float64) [][]float64 {
	out := cloneReal(m)
	for i := range out {
		floats.Scale(s, out[i])
	}
	return out
}
