package wavefront

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// indexField is a 4x4 field on a 1 um grid whose samples are 4*row+col.
func indexField(t *testing.T) Field {
	t.Helper()
	const n = 4
	xs := SpatialAxis(n, 1e-6)
	x, y := Meshgrid(xs, xs)
	e := newComplexGrid(n)
	for i := range e {
		for j := range e[i] {
			e[i][j] = complex(float64(n*i+j), 0)
		}
	}
	f, err := NewField(e, x, y)
	require.NoError(t, err)
	return f
}

func countNonZero(e [][]complex128) int {
	count := 0
	for _, row := range e {
		for _, v := range row {
			if v != 0 {
				count++
			}
		}
	}
	return count
}

func TestSlitUnderResolvedWarning(t *testing.T) {
	const energy = 1000.0

	coarse := PlaneSource(energy, 0, 10, 400e-6)
	out, diags := Slit(coarse, 1000, 1000)
	want := Diagnostics{{
		Kind:    ApertureUnderResolved,
		Element: "slit",
		Pixels:  9,
		Total:   100,
		Message: "slit too narrow, 9 pixels",
	}}
	if diff := cmp.Diff(want, diags); diff != "" {
		t.Errorf("Slit diagnostics mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 9, countNonZero(out.E))

	fine := PlaneSource(energy, 0, 1000, 1e-6)
	_, diags = Slit(fine, 1000, 1000)
	assert.Empty(t, diags)
}

func TestAperturesAreIdempotent(t *testing.T) {
	in := gaussianField(32, 1e-6, 8e-6)

	apertures := map[string]func(Field) (Field, Diagnostics){
		"slit":        func(f Field) (Field, Diagnostics) { return Slit(f, 12, 6) },
		"double slit": func(f Field) (Field, Diagnostics) { return DoubleSlit(f, 2, 10) },
		"circular":    func(f Field) (Field, Diagnostics) { return CircularAperture(f, 7) },
		"elliptical": func(f Field) (Field, Diagnostics) {
			return EllipticalAperture(f, Ellipse{XDiamUm: 16, YDiamUm: 6, AngleDegrees: 30})
		},
	}
	for name, apply := range apertures {
		t.Run(name, func(t *testing.T) {
			once, _ := apply(in)
			twice, _ := apply(once)
			assert.Equal(t, once, twice)
			assert.LessOrEqual(t, TotalIntensity(once.E), TotalIntensity(in.E))
		})
	}
}

func TestDoubleSlitPassesTwoBands(t *testing.T) {
	const n = 20
	f := PlaneSource(1000, 0, n, 1e-6)
	out, diags := DoubleSlit(f, 1.5, 10)
	assert.Empty(t, diags)
	assert.Equal(t, 6*n, countNonZero(out.E))

	for i := range out.E {
		y := out.Y[i][0]
		open := math.Abs(math.Abs(y)-5e-6) < 1.5e-6
		assert.Equal(t, open, out.E[i][n/2] != 0, "row %d at y=%g", i, y)
	}
}

func TestCircularApertureCount(t *testing.T) {
	f := PlaneSource(1000, 0, 8, 1e-6)
	out, diags := CircularAperture(f, 2.5)
	assert.Empty(t, diags)
	assert.Equal(t, 21, countNonZero(out.E))
}

func TestEllipseContains(t *testing.T) {
	wide := Ellipse{XDiamUm: 6, YDiamUm: 2}
	assert.True(t, wide.Contains(2.9e-6, 0))
	assert.False(t, wide.Contains(0, 1.5e-6))

	tall := wide
	tall.AngleDegrees = 90
	assert.False(t, tall.Contains(2.9e-6, 0))
	assert.True(t, tall.Contains(0, 2.9e-6))

	shifted := Ellipse{XCenterUm: 10, YCenterUm: -5, XDiamUm: 2, YDiamUm: 2}
	assert.True(t, shifted.Contains(10e-6, -5e-6))
	assert.False(t, shifted.Contains(0, 0))

	assert.False(t, Ellipse{XDiamUm: 0, YDiamUm: 2}.Contains(0, 0))
}

func TestParseOrientation(t *testing.T) {
	tests := []struct {
		in      string
		want    Orientation
		wantErr bool
	}{
		{"horizontal", Horizontal, false},
		{"vertical", Vertical, false},
		{"Horizontal", 0, true},
		{"diagonal", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOrientation(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownOrientation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestMirrorFlips(t *testing.T) {
	in := indexField(t)
	p := MirrorParams{WavelengthM: 1e-9, LengthM: 1, GrazingAngleRad: 0.01}

	t.Run("horizontal", func(t *testing.T) {
		p := p
		p.Orientation = Horizontal
		out, err := Mirror(in, p)
		require.NoError(t, err)
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				assert.InDelta(t, float64(4*i+3-j), real(out.E[i][j]), 1e-12)
			}
		}
	})

	t.Run("vertical", func(t *testing.T) {
		p := p
		p.Orientation = Vertical
		out, err := Mirror(in, p)
		require.NoError(t, err)
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				assert.InDelta(t, float64(4*(3-i)+j), real(out.E[i][j]), 1e-12)
			}
		}
	})

	assert.Equal(t, indexField(t), in)
}

func TestMirrorFootprintClips(t *testing.T) {
	in := indexField(t)
	alpha := 0.01
	out, err := Mirror(in, MirrorParams{
		WavelengthM:     1e-9,
		LengthM:         1.5e-6 / math.Sin(alpha),
		GrazingAngleRad: alpha,
		Orientation:     Horizontal,
	})
	require.NoError(t, err)

	// x = -2 um lies outside the footprint and lands in the last column after the flip.
	for i := 0; i < 4; i++ {
		assert.Zero(t, out.E[i][3])
		assert.NotZero(t, out.E[i][2])
	}
}

func TestMirrorHeightErrorPhase(t *testing.T) {
	const (
		n      = 8
		lambda = 1e-9
		alpha  = 0.01
	)
	in := PlaneSource(EnergyFromWavelength(lambda), 0, n, 1e-6)
	height := newRealGrid(n)
	for i := range height {
		for j := range height[i] {
			height[i][j] = 0.1
		}
	}

	out, err := Mirror(in, MirrorParams{
		WavelengthM:     lambda,
		LengthM:         1,
		GrazingAngleRad: alpha,
		Orientation:     Vertical,
		HeightErrorNm:   height,
	})
	require.NoError(t, err)

	want := 0.1e-9 * 4 * math.Pi * math.Sin(alpha) / lambda
	for i := range out.E {
		for j := range out.E[i] {
			assert.InDelta(t, want, cmplx.Phase(out.E[i][j]/in.E[i][j]), 1e-9)
		}
	}
}

func TestMirrorRejectsBadInput(t *testing.T) {
	in := indexField(t)

	_, err := Mirror(in, MirrorParams{WavelengthM: 1e-9, LengthM: 1, GrazingAngleRad: 0.01})
	assert.ErrorIs(t, err, ErrUnknownOrientation)

	_, err = Mirror(in, MirrorParams{
		WavelengthM:     1e-9,
		LengthM:         1,
		GrazingAngleRad: 0.01,
		Orientation:     Horizontal,
		HeightErrorNm:   newRealGrid(3),
	})
	assert.True(t, errors.Is(err, ErrShapeMismatch), "got %v", err)

	for _, alpha := range []float64{0, -0.01, math.NaN()} {
		out, err := Mirror(in, MirrorParams{
			WavelengthM:     1e-9,
			LengthM:         1,
			GrazingAngleRad: alpha,
			Orientation:     Vertical,
			MisalignmentRad: 1e-6,
		})
		assert.ErrorIs(t, err, ErrGrazingAngle, "alpha %g", alpha)
		assert.Nil(t, out.E)
	}
}

func TestArbitraryOptic(t *testing.T) {
	const (
		n      = 4
		lambda = 6e-7
		index  = 1.5
	)
	in := PlaneSource(EnergyFromWavelength(lambda), 0, n, 1e-6)
	thickness := newRealGrid(n)
	thickness[0][0] = lambda / 6

	out, err := ArbitraryOptic(in, lambda, thickness, index)
	require.NoError(t, err)

	k := Wavenumber(lambda)
	assert.InDelta(t, math.Remainder(k*index*lambda/6, 2*math.Pi), cmplx.Phase(out.E[0][0]/in.E[0][0]), 1e-9)
	// Thinner samples lead the thickest by k*(hmax-h).
	assert.InDelta(t, math.Pi/3, cmplx.Phase(out.E[2][1]/out.E[0][0]), 1e-9)
	assert.InDelta(t, 1.0, cmplx.Abs(out.E[3][3]), 1e-12)

	_, err = ArbitraryOptic(in, lambda, newRealGrid(n+1), index)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestDiagnosticsHas(t *testing.T) {
	ds := Diagnostics{{Kind: LensApertureOversized, Element: "lens"}}
	assert.True(t, ds.Has(LensApertureOversized))
	assert.False(t, ds.Has(ApertureUnderResolved))
	assert.False(t, Diagnostics(nil).Has(ApertureUnderResolved))
	assert.Equal(t, "lens: x", Diagnostic{Element: "lens", Message: "x"}.String())
	assert.Equal(t, "aperture under-resolved", ApertureUnderResolved.String())
}
