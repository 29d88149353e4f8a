package wavefront

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Spectrum is the angular-spectrum transfer data for one grid: the longitudinal
// wavenumber of every frequency sample and the band-limit mask of propagating waves.
// Kz is zero wherever Mask is false.
type Spectrum struct {
	Kz   [][]float64
	Mask [][]bool
}

// N returns the grid size the spectrum was built for.
func (s Spectrum) N() int { return len(s.Kz) }

// AngularSpectrum builds the Spectrum for an n x n grid with spacing dx at the given
// wavelength. A frequency sample propagates when fx^2+fy^2 < 1/lambda^2; everything
// else is evanescent and masked out.
func AngularSpectrum(n int, dx, wavelengthM float64) Spectrum {
	f := FrequencyAxis(n, dx)
	k := Wavenumber(wavelengthM)
	cutoff := 1.0 / (wavelengthM * wavelengthM)

	s := Spectrum{Kz: newRealGrid(n), Mask: make([][]bool, n)}
	for i := 0; i < n; i++ {
		s.Mask[i] = make([]bool, n)
		fy := f[i]
		for j := 0; j < n; j++ {
			fx := f[j]
			if fx*fx+fy*fy >= cutoff {
				continue
			}
			s.Mask[i][j] = true
			lx := wavelengthM * fx
			ly := wavelengthM * fy
			s.Kz[i][j] = k * math.Sqrt(1.0-lx*lx-ly*ly)
		}
	}
	return s
}

// Propagating returns the number of unmasked frequency samples.
func (s Spectrum) Propagating() int {
	count := 0
	for i := range s.Mask {
		for _, ok := range s.Mask[i] {
			if ok {
				count++
			}
		}
	}
	return count
}

// Drift propagates f a distance dzM in free space using the angular-spectrum method and
// returns the field on the same axes. Negative distances propagate backwards. Evanescent
// frequencies are removed at every distance, including zero.
//
// The grid must sample the field finely enough that its spectrum is not aliased; this is
// the caller's responsibility and is not checked.
func Drift(f Field, wavelengthM, dzM float64) Field {
	s := AngularSpectrum(f.N(), f.Dx(), wavelengthM)
	return f.withSamples(applySpectrum(f.E, s, dzM))
}

// DriftWith is Drift using a precomputed Spectrum, such as the one returned by Focus for
// its output grid.
func DriftWith(f Field, s Spectrum, dzM float64) (Field, error) {
	if s.N() != f.N() {
		return Field{}, fmt.Errorf("spectrum is %dx%d, field is %dx%d: %w", s.N(), s.N(), f.N(), f.N(), ErrShapeMismatch)
	}
	return f.withSamples(applySpectrum(f.E, s, dzM)), nil
}

func applySpectrum(e [][]complex128, s Spectrum, dzM float64) [][]complex128 {
	g := ForwardTransform(e)
	for i := range g {
		for j := range g[i] {
			if !s.Mask[i][j] {
				g[i][j] = 0
				continue
			}
			g[i][j] *= cmplx.Exp(complex(0, s.Kz[i][j]*dzM))
		}
	}
	return InverseTransform(g)
}
