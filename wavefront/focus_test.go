package wavefront

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFocalPlaneAxes(t *testing.T) {
	const (
		n      = 64
		dx     = 2e-6
		lambda = 5e-7
		focal  = 0.5
	)
	x1, y1 := FocalPlaneAxes(n, dx, lambda, focal)

	fx := FrequencyAxis(n, dx)
	assert.InDelta(t, -1/(2*dx)*lambda*focal, x1[0][0], 1e-15)
	assert.InDelta(t, fx[n-1]*lambda*focal, x1[0][n-1], 1e-15)
	assert.InDelta(t, (fx[1]-fx[0])*lambda*focal, x1[0][1]-x1[0][0], 1e-15)
	assert.Equal(t, x1[0][5], x1[7][5])
	assert.Equal(t, y1[5][0], y1[5][7])
}

func TestFocusAndLensAxesAreDeterministic(t *testing.T) {
	const lambda = 5e-7
	in := gaussianField(32, 1e-6, 5e-6)

	a := Focus(in, lambda, 0.2)
	b := Focus(in, lambda, 0.2)
	assert.Equal(t, a.Field.X, b.Field.X)
	assert.Equal(t, a.Field.Y, b.Field.Y)

	la, _ := Lens(in, lambda, 1000, 0.2)
	lb, _ := Lens(in, lambda, 1000, 0.2)
	assert.Equal(t, la.X, lb.X)
	assert.Equal(t, la.Y, lb.Y)
	assert.Equal(t, a.Field.X, la.X)
}

func TestFocusSpectrumIsForOutputGrid(t *testing.T) {
	const lambda = 5e-7
	in := gaussianField(32, 1e-6, 5e-6)

	res := Focus(in, lambda, 0.01)
	want := AngularSpectrum(32, res.Field.Dx(), lambda)
	assert.Equal(t, want, res.Spectrum)

	f := FrequencyAxis(32, in.Dx())
	assert.InEpsilon(t, (f[1]-f[0])*lambda*0.01, res.Field.Dx(), 1e-12)
}

func TestFocusShortFocalLengthCutsEvanescentBand(t *testing.T) {
	// dx1 ~ lambda*f/(N*dx) = 0.1 um, below lambda/2.
	const lambda = 5e-7
	in := gaussianField(32, 1e-6, 5e-6)

	res := Focus(in, lambda, 6.4e-6)
	require.Less(t, res.Field.Dx(), lambda/2)
	assert.Less(t, res.Spectrum.Propagating(), 32*32)
	assert.Greater(t, res.Spectrum.Propagating(), 0)
}

func TestFocusConservesSpectralEnergy(t *testing.T) {
	in := gaussianField(32, 1e-6, 5e-6)
	res := Focus(in, 5e-7, 0.2)

	n2 := float64(32 * 32)
	assert.InEpsilon(t, n2*TotalIntensity(in.E), TotalIntensity(res.Field.E), 1e-10)
}

func TestFocusPlaneWavePeaksOnAxis(t *testing.T) {
	const n = 32
	beam := PlaneSource(EnergyFromWavelength(5e-7), 0, n, 1e-6)
	res := Focus(beam, 5e-7, 0.1)

	peak := PeakIntensity(res.Field.E)
	v := res.Field.E[n/2][n/2]
	assert.InEpsilon(t, peak, real(v)*real(v)+imag(v)*imag(v), 1e-9)
}

func TestLensApertureDiagnostics(t *testing.T) {
	const lambda = 5e-7
	in := gaussianField(32, 1e-6, 5e-6)

	t.Run("aperture covering the grid", func(t *testing.T) {
		_, diags := Lens(in, lambda, 1000, 0.1)
		require.Len(t, diags, 1)
		assert.Equal(t, LensApertureOversized, diags[0].Kind)
		assert.Equal(t, 32*32, diags[0].Pixels)
	})

	t.Run("truncating aperture", func(t *testing.T) {
		_, diags := Lens(in, lambda, 8, 0.1)
		assert.Empty(t, diags)
	})
}

func TestLensNormalization(t *testing.T) {
	const (
		n      = 16
		lambda = 5e-7
		focal  = 0.1
	)
	g := newComplexGrid(n)
	g[n/2][n/2] = 1
	xs := SpatialAxis(n, 1e-6)
	x, y := Meshgrid(xs, xs)
	in, err := NewField(g, x, y)
	require.NoError(t, err)

	out, _ := Lens(in, lambda, 1000, focal)

	// A centered point source transforms to a constant of modulus 1/(lambda*f).
	want := 1 / (lambda * focal)
	for i := range out.E {
		for j := range out.E[i] {
			v := out.E[i][j]
			assert.InEpsilon(t, want, math.Hypot(real(v), imag(v)), 1e-9)
		}
	}
}
