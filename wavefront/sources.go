package wavefront

import (
	"math"
	"math/cmplx"
)

// PlaneSource returns a unit-amplitude plane wave of photon energy energyEV on an n x n
// grid with spacing dxM, carrying the propagation phase exp(-i*k*z0M).
func PlaneSource(energyEV, z0M float64, n int, dxM float64) Field {
	k := Wavenumber(WavelengthFromEnergy(energyEV))
	x, y := Meshgrid(SpatialAxis(n, dxM), SpatialAxis(n, dxM))

	v := cmplx.Exp(complex(0, -k*z0M))
	e := newComplexGrid(n)
	for i := range e {
		for j := range e[i] {
			e[i][j] = v
		}
	}
	return Field{E: e, X: x, Y: y}
}

// GaussianBeam holds the derived parameters of a Gaussian source at distance z0 from its
// waist.
type GaussianBeam struct {
	WavelengthM float64
	RayleighXM  float64 // Rayleigh range for the x waist
	RayleighYM  float64
	WidthXM     float64 // beam radius at z0
	WidthYM     float64
	DxM         float64 // grid spacing chosen to fit the beam
}

// NewGaussianBeam computes the beam radii at z0M and a grid spacing for n samples: the
// field of view is four times the FWHM (1.18 * the larger radius).
func NewGaussianBeam(energyEV, w0xM, w0yM float64, n int, z0M float64) GaussianBeam {
	lambda := WavelengthFromEnergy(energyEV)
	b := GaussianBeam{
		WavelengthM: lambda,
		RayleighXM:  math.Pi * w0xM * w0xM / lambda,
		RayleighYM:  math.Pi * w0yM * w0yM / lambda,
	}
	b.WidthXM = w0xM * math.Sqrt(1+(z0M/b.RayleighXM)*(z0M/b.RayleighXM))
	b.WidthYM = w0yM * math.Sqrt(1+(z0M/b.RayleighYM)*(z0M/b.RayleighYM))
	fwhm := 1.18 * math.Max(b.WidthXM, b.WidthYM)
	b.DxM = 4 * fwhm / float64(n)
	return b
}

// curvatureRadius is z0*(1+(zR/z0)^2). It is infinite at the waist.
func curvatureRadius(z0M, rayleighM float64) float64 {
	if z0M == 0 {
		return math.Inf(1)
	}
	return z0M * (1 + (rayleighM/z0M)*(rayleighM/z0M))
}

// sag is the depth of a sphere of radius r at lateral offset u.
func sag(r, u float64) float64 {
	if math.IsInf(r, 0) {
		return 0
	}
	return r * (1 - math.Cos(math.Asin(u/r)))
}

// GaussianSource returns an elliptical Gaussian beam with waists w0xM, w0yM observed a
// distance z0M from the waist, on an n x n grid sized by NewGaussianBeam. The phase is
// the spherical wavefront of the beam's curvature radii.
func GaussianSource(energyEV, w0xM, w0yM float64, n int, z0M float64) Field {
	b := NewGaussianBeam(energyEV, w0xM, w0yM, n, z0M)
	xs := SpatialAxis(n, b.DxM)
	x, y := Meshgrid(xs, xs)

	rx := curvatureRadius(z0M, b.RayleighXM)
	ry := curvatureRadius(z0M, b.RayleighYM)
	k := Wavenumber(b.WavelengthM)

	e := newComplexGrid(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			xx, yy := x[i][j], y[i][j]
			sx, sy := sag(rx, xx), sag(ry, yy)
			phase := k * math.Sqrt(sx*sx+sy*sy)
			amp := math.Exp(-(xx/b.WidthXM)*(xx/b.WidthXM) - (yy/b.WidthYM)*(yy/b.WidthYM))
			e[i][j] = complex(amp, 0) * cmplx.Exp(complex(0, phase))
		}
	}
	return Field{E: e, X: x, Y: y}
}
