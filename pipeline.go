package main

import (
	"fmt"
	"time"

	"github.com/bob-anderson-ok/beamprop/wavefront"
)

// stageResult is the beam after the source or one element.
type stageResult struct {
	Index       int // 0 is the source
	Name        string
	Type        string
	Field       wavefront.Field
	Power       float64 // in the source's normalization, see propagator.power
	Diagnostics wavefront.Diagnostics
	Elapsed     time.Duration
	Save        bool
}

// propagator carries the beam from element to element.
type propagator struct {
	wavelengthM float64
	field       wavefront.Field
	// spectrum belongs to field's grid. It is dropped whenever an element changes the grid.
	spectrum *wavefront.Spectrum
	// powerScale converts field.Power() back to the source's normalization. Focus and
	// Lens are unnormalized transforms onto a new spacing, so each one changes it.
	powerScale float64
}

func newPropagator(wavelengthM float64, source wavefront.Field) *propagator {
	return &propagator{wavelengthM: wavelengthM, field: source, powerScale: 1}
}

// power is the beam power in the source's normalization. Free space, apertures and
// phase elements keep it or reduce it, never raise it.
func (p *propagator) power() float64 {
	return p.field.Power() * p.powerScale
}

// rescale undoes the n^2 * gain factor a transforming element put on sum(|E|^2) and the
// change of sample area from dxIn^2 to the new grid's dx^2.
func (p *propagator) rescale(dxIn, gain float64) {
	n := float64(p.field.N())
	dxOut := p.field.Dx()
	p.powerScale *= dxIn * dxIn / (n * n * gain * dxOut * dxOut)
}

func buildSource(b *Beamline) wavefront.Field {
	s := b.Source
	if s.Type == "gaussian" {
		return wavefront.GaussianSource(b.PhotonEnergyEV,
			s.W0xUm*wavefront.MetersPerMicrometer, s.W0yUm*wavefront.MetersPerMicrometer,
			s.NumPoints, s.Z0M)
	}
	return wavefront.PlaneSource(b.PhotonEnergyEV, s.Z0M, s.NumPoints, s.DxUm*wavefront.MetersPerMicrometer)
}

func stageName(i int, e ElementSpec) string {
	if e.Name != "" {
		return e.Name
	}
	return fmt.Sprintf("%02d_%s", i+1, e.Type)
}

func (p *propagator) apply(e ElementSpec) (wavefront.Diagnostics, error) {
	var diags wavefront.Diagnostics
	switch e.Type {
	case "slit":
		p.field, diags = wavefront.Slit(p.field, e.SlitXUm, e.SlitYUm)

	case "double_slit":
		p.field, diags = wavefront.DoubleSlit(p.field, e.HalfWidthUm, e.SeparationUm)

	case "circular_aperture":
		p.field, diags = wavefront.CircularAperture(p.field, e.RadiusUm)

	case "elliptical_aperture":
		p.field, diags = wavefront.EllipticalAperture(p.field, e.Ellipse)

	case "mirror":
		out, err := wavefront.Mirror(p.field, wavefront.MirrorParams{
			WavelengthM:     p.wavelengthM,
			LengthM:         e.LengthM,
			GrazingAngleRad: e.GrazingAngleRad,
			Orientation:     e.Orientation,
			HeightErrorNm:   e.HeightErrorNm,
			MisalignmentRad: e.MisalignmentRad,
		})
		if err != nil {
			return nil, err
		}
		p.field = out

	case "lens":
		dxIn := p.field.Dx()
		lf := p.wavelengthM * e.FocalM
		p.field, diags = wavefront.Lens(p.field, p.wavelengthM, e.RadiusUm, e.FocalM)
		p.spectrum = nil
		p.rescale(dxIn, 1/(lf*lf))

	case "focus":
		dxIn := p.field.Dx()
		res := wavefront.Focus(p.field, p.wavelengthM, e.FocalM)
		p.field = res.Field
		p.spectrum = &res.Spectrum
		p.rescale(dxIn, 1)

	case "drift":
		if p.spectrum == nil {
			s := wavefront.AngularSpectrum(p.field.N(), p.field.Dx(), p.wavelengthM)
			p.spectrum = &s
		}
		out, err := wavefront.DriftWith(p.field, *p.spectrum, e.DistanceM)
		if err != nil {
			return nil, err
		}
		p.field = out

	case "arbitrary_optic":
		out, err := wavefront.ArbitraryOptic(p.field, p.wavelengthM, e.ThicknessM, e.RefractiveIndex)
		if err != nil {
			return nil, err
		}
		p.field = out

	default:
		return nil, fmt.Errorf("unknown element type %q", e.Type)
	}
	return diags, nil
}

// runBeamline builds the source and applies every element in order, calling onStage after
// the source and after each element. The last stage is always marked for saving. It
// returns the final field and every diagnostic raised on the way.
func runBeamline(b *Beamline, onStage func(stageResult)) (wavefront.Field, wavefront.Diagnostics, error) {
	if onStage == nil {
		onStage = func(stageResult) {}
	}

	start := time.Now()
	p := newPropagator(wavefront.WavelengthFromEnergy(b.PhotonEnergyEV), buildSource(b))
	onStage(stageResult{
		Name:    "source",
		Type:    b.Source.Type,
		Field:   p.field,
		Power:   p.power(),
		Elapsed: time.Since(start),
		Save:    b.Source.Save || len(b.Elements) == 0,
	})

	var all wavefront.Diagnostics
	for i, e := range b.Elements {
		name := stageName(i, e)
		start = time.Now()
		diags, err := p.apply(e)
		if err != nil {
			return wavefront.Field{}, all, fmt.Errorf("element %d (%s): %w", i, name, err)
		}
		all = append(all, diags...)
		onStage(stageResult{
			Index:       i + 1,
			Name:        name,
			Type:        e.Type,
			Field:       p.field,
			Power:       p.power(),
			Diagnostics: diags,
			Elapsed:     time.Since(start),
			Save:        e.Save || i == len(b.Elements)-1,
		})
	}
	return p.field, all, nil
}
