package wavefront

import (
	"fmt"
	"math"
	"math/cmplx"
)

// FocusResult is the output of Focus: the field in the back focal plane on its new axes,
// and the angular spectrum of that plane ready for a following DriftWith.
type FocusResult struct {
	Field    Field
	Spectrum Spectrum
}

// FocalPlaneAxes returns the output axes of a Fourier-transforming lens of focal length
// focalM acting on an n x n grid with spacing dx: x1 = fx*lambda*f, y1 = fy*lambda*f.
// The result depends on nothing but its arguments.
func FocalPlaneAxes(n int, dx, wavelengthM, focalM float64) (x1, y1 [][]float64) {
	fx, fy := FrequencyAxes(n, dx)
	s := wavelengthM * focalM
	return scaleGrid(fx, s), scaleGrid(fy, s)
}

// Focus propagates f through an ideal thin lens to its back focal plane. The field is
// multiplied by exp(i*pi/(lambda*f)*(x^2+y^2)), Fourier transformed, rescaled onto the
// focal-plane axes and multiplied by the same quadratic phase evaluated there. The
// angular spectrum of the new grid is returned with it.
func Focus(f Field, wavelengthM, focalM float64) FocusResult {
	n := f.N()
	c := math.Pi / wavelengthM / focalM

	pre := newComplexGrid(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x, y := f.X[i][j], f.Y[i][j]
			pre[i][j] = f.E[i][j] * cmplx.Exp(complex(0, c*(x*x+y*y)))
		}
	}

	g := ForwardTransform(pre)
	x1, y1 := FocalPlaneAxes(n, f.Dx(), wavelengthM, focalM)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x, y := x1[i][j], y1[i][j]
			g[i][j] *= cmplx.Exp(complex(0, c*(x*x+y*y)))
		}
	}

	out := Field{E: g, X: x1, Y: y1}
	return FocusResult{
		Field:    out,
		Spectrum: AngularSpectrum(n, out.Dx(), wavelengthM),
	}
}

// Lens models an apertured thin lens as a scaled Fourier transform. Samples outside the
// circular aperture x^2+y^2 < r^2 are zeroed, the windowed field is transformed without a
// pre-lens phase, and the result is placed on the focal-plane axes with the factor
// exp(i*pi/(lambda*f)*(x1^2+y1^2)) / (i*lambda*f).
//
// A LensApertureOversized diagnostic is returned when the aperture covers the whole grid.
func Lens(f Field, wavelengthM, radiusUm, focalM float64) (Field, Diagnostics) {
	n := f.N()
	r := umToM(radiusUm)

	windowed, pixels := applyMask(f, func(x, y float64) bool { return x*x+y*y < r*r })

	var diags Diagnostics
	if total := n * n; pixels == total {
		diags = emit(Diagnostic{
			Kind:    LensApertureOversized,
			Element: "lens",
			Pixels:  pixels,
			Total:   total,
			Message: fmt.Sprintf("lens aperture radius %g um covers the whole %dx%d grid", radiusUm, n, n),
		})
	}

	g := ForwardTransform(windowed)
	x1, y1 := FocalPlaneAxes(n, f.Dx(), wavelengthM, focalM)
	c := math.Pi / wavelengthM / focalM
	norm := complex(0, wavelengthM*focalM)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x, y := x1[i][j], y1[i][j]
			g[i][j] *= cmplx.Exp(complex(0, c*(x*x+y*y))) / norm
		}
	}
	return Field{E: g, X: x1, Y: y1}, diags
}
