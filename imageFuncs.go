package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/bob-anderson-ok/beamprop/profile"
	"github.com/bob-anderson-ok/beamprop/wavefront"
)

var (
	errEmptyMatrix  = errors.New("empty matrix")
	errRaggedMatrix = errors.New("ragged matrix")
)

// gray16FullScale is the 16-bit value given to the peak intensity of a stage.
const gray16FullScale = 60000.0

func checkMatrix(m [][]float64) error {
	if len(m) == 0 || len(m[0]) == 0 {
		return errEmptyMatrix
	}
	w := len(m[0])
	for y := 1; y < len(m); y++ {
		if len(m[y]) != w {
			return errRaggedMatrix
		}
	}
	return nil
}

// MatrixToGray16Data -------------------- Data PNG (Gray16, fixed physical scaling) --------------------
// Mapping: Y16 = round(v * scale), clamped to [0, 65535]
func MatrixToGray16Data(m [][]float64, scale float64) (*image.Gray16, error) {
	if err := checkMatrix(m); err != nil {
		return nil, err
	}
	if scale <= 0 {
		return nil, errors.New("scale must be > 0")
	}
	h := len(m)
	w := len(m[0])

	img := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := y * img.Stride
		for x := 0; x < w; x++ {
			i := row + 2*x
			v := m[y][x]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				img.Pix[i], img.Pix[i+1] = 0, 0
				continue
			}

			u := math.Round(v * scale)
			if u < 0 {
				u = 0
			} else if u > 65535 {
				u = 65535
			}
			y16 := uint16(u)

			// Gray16 Pix is big-endian per pixel: high then low
			img.Pix[i] = uint8(y16 >> 8)
			img.Pix[i+1] = uint8(y16)
		}
	}
	return img, nil
}

// MatrixToGrayViewPercentile -------------------- View PNG (Gray8, auto-stretch) --------------------
// Percentile stretch: map pLow to pHigh onto 0..255 and clamp.
func MatrixToGrayViewPercentile(m [][]float64, pLow, pHigh float64) (*image.Gray, error) {
	if err := checkMatrix(m); err != nil {
		return nil, err
	}
	h := len(m)
	w := len(m[0])
	if !(0 <= pLow && pLow < pHigh && pHigh <= 100) {
		return nil, errors.New("percentiles must satisfy 0 <= p Low < pHigh <= 100")
	}

	// Collect finite values for percentile computation
	vals := make([]float64, 0, h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := m[y][x]
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				vals = append(vals, v)
			}
		}
	}
	if len(vals) == 0 {
		return nil, errors.New("matrix has no finite values")
	}

	sort.Float64s(vals)

	percentile := func(p float64) float64 {
		if p <= 0 {
			return vals[0]
		}
		if p >= 100 {
			return vals[len(vals)-1]
		}
		pos := (p / 100.0) * float64(len(vals)-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i >= len(vals)-1 {
			return vals[len(vals)-1]
		}
		return vals[i]*(1-f) + vals[i+1]*f
	}

	lo := percentile(pLow)
	hi := percentile(pHigh)
	if hi == lo {
		hi = lo + 1 // avoid divide-by-zero; image becomes mostly constant
	}

	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := y * img.Stride
		for x := 0; x < w; x++ {
			v := m[y][x]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				img.Pix[row+x] = 0
				continue
			}
			t := (v - lo) / (hi - lo)
			if t < 0 {
				t = 0
			} else if t > 1 {
				t = 1
			}
			img.Pix[row+x] = uint8(math.Round(t * 255.0))
		}
	}
	return img, nil
}

func savePNG(filename string, img image.Image) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, img)
}

func SaveGrayPNG(filename string, img *image.Gray) error {
	return savePNG(filename, img)
}

func SaveGray16PNG(filename string, img *image.Gray16) error {
	return savePNG(filename, img)
}

// savedStage records what was written for one stage.
type savedStage struct {
	Index     int
	Name      string
	N         int
	DxM       float64
	Power     float64
	Peak      float64
	Scale16   float64 // intensity = pixel / Scale16 in the 16-bit file
	FWHMUm    float64 // of the horizontal center profile, 0 if not resolved
	FWHMYUm   float64 // of the vertical center profile
	ImageFile string
	DataFile  string
	PlotFile  string
	PlotYFile string
	CutFile   string // the 8-bit view with the horizontal cut drawn on it
	Cut       []profile.Sample
	Plot      image.Image
}

// writeStageOutputs writes <name>_8bit.png, <name>_16bit.png, <name>_cut.png,
// <name>_profile.png and <name>_profile_y.png into dir. The 8-bit view stretches the
// view percentiles of the intensity onto 0..255.
func writeStageOutputs(dir string, s stageResult, v viewRange) (savedStage, error) {
	out := savedStage{
		Index:     s.Index,
		Name:      s.Name,
		N:         s.Field.N(),
		DxM:       s.Field.Dx(),
		Power:     s.Power,
		ImageFile: filepath.Join(dir, s.Name+"_8bit.png"),
		DataFile:  filepath.Join(dir, s.Name+"_16bit.png"),
		PlotFile:  filepath.Join(dir, s.Name+"_profile.png"),
		PlotYFile: filepath.Join(dir, s.Name+"_profile_y.png"),
		CutFile:   filepath.Join(dir, s.Name+"_cut.png"),
	}

	intensity := wavefront.Intensity(s.Field.E)
	out.Peak = wavefront.PeakIntensity(s.Field.E)

	view, err := MatrixToGrayViewPercentile(intensity, v.Low, v.High)
	if err != nil {
		return out, fmt.Errorf("creation of the display image for %s failed: %w", s.Name, err)
	}
	if err := SaveGrayPNG(out.ImageFile, view); err != nil {
		return out, fmt.Errorf("writing of %q failed: %w", out.ImageFile, err)
	}

	// Make the scientific (well-defined scaling) version of the intensity matrix
	out.Scale16 = 1.0
	if out.Peak > 0 {
		out.Scale16 = gray16FullScale / out.Peak
	}
	data, err := MatrixToGray16Data(intensity, out.Scale16)
	if err != nil {
		return out, fmt.Errorf("creation of the 16-bit image for %s failed: %w", s.Name, err)
	}
	if err := SaveGray16PNG(out.DataFile, data); err != nil {
		return out, fmt.Errorf("writing of %q failed: %w", out.DataFile, err)
	}

	out.Cut, err = profile.Horizontal(0).Samples(out.N)
	if err != nil {
		// Grids too small to cut get images but no profile.
		return out, nil
	}
	points := profile.ExtractSamples(intensity, out.Cut, out.DxM*1e6)
	out.FWHMUm, err = profile.FWHM(points)
	if err != nil {
		return out, err
	}
	out.Plot, err = makeProfilePlot(s.Name, "Horizontal", "x (um)", points, 1200, 500)
	if err != nil {
		return out, fmt.Errorf("plotting of the %s profile failed: %w", s.Name, err)
	}
	if err := profile.SaveImageToFile(out.PlotFile, out.Plot); err != nil {
		return out, err
	}

	annotated, err := profile.DrawCutOnImage(view, out.Cut)
	if err != nil {
		return out, err
	}
	if err := profile.SaveImageToFile(out.CutFile, annotated); err != nil {
		return out, err
	}

	yPoints, err := profile.Extract(intensity, profile.Vertical(0), out.DxM*1e6)
	if err != nil {
		return out, err
	}
	out.FWHMYUm, err = profile.FWHM(yPoints)
	if err != nil {
		return out, err
	}
	if err := saveProfilePlot(out.PlotYFile, s.Name, "Vertical", "y (um)", yPoints, 1200, 500); err != nil {
		return out, fmt.Errorf("plotting of the %s vertical profile failed: %w", s.Name, err)
	}
	return out, nil
}

func printStageSummary(s stageResult, out savedStage) {
	lo, hi := s.Field.Extent()
	fmt.Printf("  %s: %d x %d points, spacing %0.4g um, x from %0.4g to %0.4g um\n",
		out.Name, out.N, out.N, out.DxM*1e6, lo*1e6, hi*1e6)
	fmt.Printf("  %s: power %0.6g, peak intensity %0.6g, FWHM %0.4g um (x) by %0.4g um (y)\n",
		out.Name, out.Power, out.Peak, out.FWHMUm, out.FWHMYUm)
	fmt.Printf("  %s: wrote %s, %s (intensity = pixel / %0.6g), %s, %s and %s\n",
		out.Name, filepath.Base(out.ImageFile), filepath.Base(out.DataFile), out.Scale16,
		filepath.Base(out.CutFile), filepath.Base(out.PlotFile), filepath.Base(out.PlotYFile))
}
