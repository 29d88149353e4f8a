package wavefront

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
)

// applyMask returns f.E with every sample where inside(x, y) is false set to zero, and
// the number of samples that were kept.
func applyMask(f Field, inside func(x, y float64) bool) ([][]complex128, int) {
	n := f.N()
	out := newComplexGrid(n)
	kept := 0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if inside(f.X[i][j], f.Y[i][j]) {
				out[i][j] = f.E[i][j]
				kept++
			}
		}
	}
	return out, kept
}

// Slit passes the rectangle |x| < widthXUm/2, |y| < widthYUm/2.
func Slit(f Field, widthXUm, widthYUm float64) (Field, Diagnostics) {
	hx := umToM(widthXUm) / 2
	hy := umToM(widthYUm) / 2
	e, kept := applyMask(f, func(x, y float64) bool {
		return math.Abs(x) < hx && math.Abs(y) < hy
	})
	return f.withSamples(e), checkAperture("slit", kept, f.N()*f.N())
}

// DoubleSlit passes two horizontal bands centered at y = +/- separationUm/2, each
// extending halfWidthUm either side of its center line.
func DoubleSlit(f Field, halfWidthUm, separationUm float64) (Field, Diagnostics) {
	w := umToM(halfWidthUm)
	c := umToM(separationUm) / 2
	e, kept := applyMask(f, func(_, y float64) bool {
		return math.Abs(y-c) <= w || math.Abs(y+c) <= w
	})
	return f.withSamples(e), checkAperture("double slit", kept, f.N()*f.N())
}

// CircularAperture passes x^2+y^2 < r^2.
func CircularAperture(f Field, radiusUm float64) (Field, Diagnostics) {
	r := umToM(radiusUm)
	e, kept := applyMask(f, func(x, y float64) bool { return x*x+y*y < r*r })
	return f.withSamples(e), checkAperture("circular aperture", kept, f.N()*f.N())
}

// Ellipse describes an elliptical aperture. Diameters are along the ellipse's own axes
// before rotation; AngleDegrees rotates it counter-clockwise from the +x axis.
type Ellipse struct {
	XCenterUm    float64
	YCenterUm    float64
	XDiamUm      float64
	YDiamUm      float64
	AngleDegrees float64
}

// Contains reports whether the point (x, y), in meters, lies inside or on the ellipse.
func (el Ellipse) Contains(x, y float64) bool {
	a := umToM(el.XDiamUm) / 2
	b := umToM(el.YDiamUm) / 2
	if a <= 0 || b <= 0 {
		return false
	}
	theta := el.AngleDegrees * math.Pi / 180.0
	dx := x - umToM(el.XCenterUm)
	dy := y - umToM(el.YCenterUm)
	t1 := (dx*math.Cos(theta) + dy*math.Sin(theta)) / a
	t2 := (-dx*math.Sin(theta) + dy*math.Cos(theta)) / b
	return t1*t1+t2*t2 <= 1.0
}

// EllipticalAperture passes the interior of el.
func EllipticalAperture(f Field, el Ellipse) (Field, Diagnostics) {
	e, kept := applyMask(f, el.Contains)
	return f.withSamples(e), checkAperture("elliptical aperture", kept, f.N()*f.N())
}

// Orientation selects the plane in which a mirror deflects the beam.
type Orientation int

const (
	// Horizontal mirrors deflect in x: the footprint limits x and the beam is
	// flipped left to right.
	Horizontal Orientation = iota + 1
	// Vertical mirrors deflect in y and flip the beam top to bottom.
	Vertical
)

// ParseOrientation accepts "horizontal" or "vertical".
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "horizontal":
		return Horizontal, nil
	case "vertical":
		return Vertical, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownOrientation)
}

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// MirrorParams describes a flat grazing-incidence mirror.
type MirrorParams struct {
	WavelengthM     float64
	LengthM         float64
	GrazingAngleRad float64
	Orientation     Orientation
	// HeightErrorNm is an optional surface height error map on the field grid. A nil
	// map is a perfect surface.
	HeightErrorNm   [][]float64
	MisalignmentRad float64
}

// Mirror reflects f off a flat mirror. The mirror's projected footprint
// |L*sin(alpha+delta)| clips the beam along the deflection axis, the height error and
// misalignment add a phase of (h + delta*u/sin(alpha)) * 4*pi*sin(alpha)/lambda, where u
// is the coordinate along that axis, and the beam is flipped along it.
func Mirror(f Field, p MirrorParams) (Field, error) {
	n := f.N()
	if p.Orientation != Horizontal && p.Orientation != Vertical {
		return Field{}, fmt.Errorf("mirror: %v: %w", p.Orientation, ErrUnknownOrientation)
	}
	if !(p.GrazingAngleRad > 0) {
		return Field{}, fmt.Errorf("mirror: %g rad: %w", p.GrazingAngleRad, ErrGrazingAngle)
	}
	if p.HeightErrorNm != nil {
		if err := checkReal(p.HeightErrorNm, n); err != nil {
			return Field{}, fmt.Errorf("mirror height error map: %w", err)
		}
	}

	alpha := p.GrazingAngleRad
	delta := p.MisalignmentRad
	width := math.Abs(p.LengthM * math.Sin(alpha+delta))
	phaseScale := 4 * math.Pi * math.Sin(alpha) / p.WavelengthM

	reflected := newComplexGrid(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			u := f.X[i][j]
			if p.Orientation == Vertical {
				u = f.Y[i][j]
			}
			if math.Abs(u) >= width {
				continue
			}
			var h float64
			if p.HeightErrorNm != nil {
				h = p.HeightErrorNm[i][j] * MetersPerNanometer
			}
			misalign := delta * u / math.Sin(alpha)
			phase := (h + misalign) * phaseScale
			reflected[i][j] = f.E[i][j] * cmplx.Exp(complex(0, phase))
		}
	}

	if p.Orientation == Horizontal {
		flipLeftRight(reflected)
	} else {
		flipUpDown(reflected)
	}
	return f.withSamples(reflected), nil
}

func flipLeftRight(m [][]complex128) {
	for _, row := range m {
		for l, r := 0, len(row)-1; l < r; l, r = l+1, r-1 {
			row[l], row[r] = row[r], row[l]
		}
	}
}

func flipUpDown(m [][]complex128) {
	for t, b := 0, len(m)-1; t < b; t, b = t+1, b-1 {
		m[t], m[b] = m[b], m[t]
	}
}

// ArbitraryOptic applies the phase delay of a transmissive element with thickness map
// thicknessM and refractive index n: k*n*hmax + k*(hmax - h), where hmax is the largest
// thickness in the map.
func ArbitraryOptic(f Field, wavelengthM float64, thicknessM [][]float64, index float64) (Field, error) {
	n := f.N()
	if err := checkReal(thicknessM, n); err != nil {
		return Field{}, fmt.Errorf("arbitrary optic thickness map: %w", err)
	}
	hmax := math.Inf(-1)
	for _, row := range thicknessM {
		hmax = math.Max(hmax, floats.Max(row))
	}

	k := Wavenumber(wavelengthM)
	out := newComplexGrid(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			phi := k*index*hmax + k*(hmax-thicknessM[i][j])
			out[i][j] = f.E[i][j] * cmplx.Exp(complex(0, phi))
		}
	}
	return f.withSamples(out), nil
}
