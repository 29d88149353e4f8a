package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bob-anderson-ok/beamprop/profile"
	"github.com/bob-anderson-ok/beamprop/wavefront"
)

func TestRunBeamlineMatchesManualComposition(t *testing.T) {
	const lambda = 500e-9
	b := Beamline{
		PhotonEnergyEV: wavefront.EnergyFromWavelength(lambda),
		Source:         SourceSpec{Type: "plane", NumPoints: 64, DxUm: 1},
		Elements: []ElementSpec{
			{Type: "slit", SlitXUm: 20, SlitYUm: 20},
			{Type: "drift", DistanceM: 1e-3},
			{Type: "focus", FocalM: 0.1, Name: "focal_plane"},
			{Type: "drift", DistanceM: 0.01},
		},
	}

	var stages []stageResult
	final, diags, err := runBeamline(&b, func(s stageResult) { stages = append(stages, s) })
	require.NoError(t, err)
	assert.Empty(t, diags)

	require.Len(t, stages, 5)
	assert.Equal(t, "source", stages[0].Name)
	assert.Equal(t, "01_slit", stages[1].Name)
	assert.Equal(t, "focal_plane", stages[3].Name)
	assert.False(t, stages[3].Save)
	assert.True(t, stages[4].Save)

	// The pipeline works from the energy, so use the wavelength it derives.
	wl := wavefront.WavelengthFromEnergy(b.PhotonEnergyEV)
	beam := wavefront.PlaneSource(b.PhotonEnergyEV, 0, 64, 1e-6)
	beam, _ = wavefront.Slit(beam, 20, 20)
	beam = wavefront.Drift(beam, wl, 1e-3)
	res := wavefront.Focus(beam, wl, 0.1)
	want, err := wavefront.DriftWith(res.Field, res.Spectrum, 0.01)
	require.NoError(t, err)

	assert.Equal(t, want.X, final.X)
	assert.Equal(t, want.E, final.E)
}

func TestRunBeamlineCollectsDiagnostics(t *testing.T) {
	b := Beamline{
		PhotonEnergyEV: 1000,
		Source:         SourceSpec{Type: "plane", NumPoints: 10, DxUm: 400},
		Elements: []ElementSpec{
			{Type: "slit", SlitXUm: 1000, SlitYUm: 1000},
			{Type: "lens", RadiusUm: 1e6, FocalM: 1},
		},
	}
	_, diags, err := runBeamline(&b, nil)
	require.NoError(t, err)
	require.Len(t, diags, 2)
	assert.Equal(t, wavefront.ApertureUnderResolved, diags[0].Kind)
	assert.Equal(t, 9, diags[0].Pixels)
	assert.True(t, diags.Has(wavefront.LensApertureOversized))
}

func TestRunBeamlineReportsElementErrors(t *testing.T) {
	b := Beamline{
		PhotonEnergyEV: 1000,
		Source:         SourceSpec{Type: "plane", NumPoints: 16, DxUm: 1},
		Elements:       []ElementSpec{{Type: "mirror", LengthM: 1, GrazingAngleRad: 0.01}},
	}
	_, _, err := runBeamline(&b, nil)
	assert.ErrorIs(t, err, wavefront.ErrUnknownOrientation)
	assert.Contains(t, err.Error(), "element 0 (01_mirror)")
}

func TestSourceOnlyBeamlineSavesSource(t *testing.T) {
	b := Beamline{
		PhotonEnergyEV: 8000,
		Source:         SourceSpec{Type: "gaussian", NumPoints: 32, W0xUm: 20, W0yUm: 10},
	}
	var stages []stageResult
	final, _, err := runBeamline(&b, func(s stageResult) { stages = append(stages, s) })
	require.NoError(t, err)
	require.Len(t, stages, 1)
	assert.True(t, stages[0].Save)
	assert.Equal(t, 32, final.N())
}

func TestPropagatorSpectrumFollowsGrid(t *testing.T) {
	const lambda = 500e-9
	p := newPropagator(lambda, wavefront.PlaneSource(wavefront.EnergyFromWavelength(lambda), 0, 32, 1e-6))

	_, err := p.apply(ElementSpec{Type: "drift", DistanceM: 1e-3})
	require.NoError(t, err)
	require.NotNil(t, p.spectrum)
	assert.Equal(t, wavefront.AngularSpectrum(32, p.field.Dx(), lambda), *p.spectrum)

	_, err = p.apply(ElementSpec{Type: "lens", RadiusUm: 10, FocalM: 0.05})
	require.NoError(t, err)
	assert.Nil(t, p.spectrum)

	_, err = p.apply(ElementSpec{Type: "drift", DistanceM: 1e-3})
	require.NoError(t, err)
	require.NotNil(t, p.spectrum)
	assert.Equal(t, wavefront.AngularSpectrum(32, p.field.Dx(), lambda), *p.spectrum)

	_, err = p.apply(ElementSpec{Type: "prism"})
	assert.Error(t, err)
}

func TestStagePowerIsComparableAcrossTransforms(t *testing.T) {
	b := Beamline{
		PhotonEnergyEV: wavefront.EnergyFromWavelength(500e-9),
		Source:         SourceSpec{Type: "plane", NumPoints: 64, DxUm: 1},
		Elements: []ElementSpec{
			{Type: "slit", SlitXUm: 20, SlitYUm: 20},
			{Type: "focus", FocalM: 0.1},
			{Type: "drift", DistanceM: 0.01},
			{Type: "lens", RadiusUm: 1e6, FocalM: 0.2},
			{Type: "drift", DistanceM: 1e-3},
		},
	}

	var stages []stageResult
	_, diags, err := runBeamline(&b, func(s stageResult) { stages = append(stages, s) })
	require.NoError(t, err)
	require.True(t, diags.Has(wavefront.LensApertureOversized))
	require.Len(t, stages, 6)

	// Every grid here is coarse enough that nothing is evanescent, and the lens passes
	// the whole grid, so only the slit removes power.
	assert.Less(t, stages[1].Power, stages[0].Power)
	slit := stages[1].Power
	assert.InEpsilon(t, slit, stages[1].Field.Power(), 1e-15)
	for _, s := range stages[2:] {
		assert.InEpsilon(t, slit, s.Power, 1e-9, s.Name)
	}
	assert.NotEqual(t, stages[2].Field.Dx(), stages[1].Field.Dx())
}

func TestWriteStageOutputs(t *testing.T) {
	dir := t.TempDir()
	field := wavefront.GaussianSource(8000, 20e-6, 20e-6, 64, 0)

	out, err := writeStageOutputs(dir, stageResult{Name: "waist", Field: field, Power: field.Power(), Save: true}, defaultView)
	require.NoError(t, err)

	for _, f := range []string{"waist_8bit.png", "waist_16bit.png", "waist_cut.png", "waist_profile.png", "waist_profile_y.png"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, f)
	}

	data, err := profile.LoadGray16PNG(out.DataFile, out.Scale16)
	require.NoError(t, err)
	assert.InEpsilon(t, out.Peak, data[32][32], 1e-4)

	// exp(-2x^2/w^2) has FWHM w*sqrt(2 ln 2).
	assert.InEpsilon(t, 20*1.1774, out.FWHMUm, 0.02)
	assert.InEpsilon(t, 20*1.1774, out.FWHMYUm, 0.02)
	assert.InEpsilon(t, 20e-6*20e-6*math.Pi/2, out.Power, 1e-3)

	cut, err := profile.LoadImageFromFile(out.CutFile)
	require.NoError(t, err)
	r, g, b, _ := cut.At(20, 32).RGBA()
	assert.Equal(t, []uint32{0xffff, 0, 0}, []uint32{r, g, b})
	assert.Len(t, out.Cut, 64)
	assert.NotNil(t, out.Plot)

	powerFile := filepath.Join(dir, "power.png")
	require.NoError(t, makePowerPlot([]savedStage{out, out}, "test", powerFile))
	_, err = profile.LoadImageFromFile(powerFile)
	assert.NoError(t, err)
}
