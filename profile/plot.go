package profile

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"gonum.org/v1/plot"
	_ "gonum.org/v1/plot/font/liberation"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	vgdraw "gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// StepTicks is a tick marker with fixed step intervals.
type StepTicks struct {
	Step   float64
	Format string
}

func (t StepTicks) Ticks(min, max float64) []plot.Tick {
	if t.Step <= 0 || math.IsNaN(t.Step) || math.IsInf(t.Step, 0) {
		return nil
	}
	var ticks []plot.Tick
	start := math.Ceil(min/t.Step) * t.Step
	for v := start; v <= max; v += t.Step {
		ticks = append(ticks, plot.Tick{
			Value: v,
			Label: fmt.Sprintf(t.Format, v),
		})
	}
	return ticks
}

// PlotOptions labels a profile plot.
type PlotOptions struct {
	Title  string
	XLabel string
	// Markers are positions drawn as red dashed vertical lines, e.g. the half-maximum
	// crossings returned by Crossings.
	Markers []float64
}

func setFonts(p *plot.Plot) {
	p.Title.TextStyle.Font.Typeface = "Liberation"
	p.Title.TextStyle.Font.Variant = "Sans"
	p.Title.TextStyle.Font.Size = vg.Points(12)

	p.X.Label.TextStyle.Font.Typeface = "Liberation"
	p.X.Label.TextStyle.Font.Variant = "Sans"
	p.X.Label.TextStyle.Font.Size = vg.Points(12)

	p.Y.Label.TextStyle.Font.Typeface = "Liberation"
	p.Y.Label.TextStyle.Font.Variant = "Sans"
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)

	p.X.Tick.Label.Font.Typeface = "Liberation"
	p.X.Tick.Label.Font.Variant = "Sans"
	p.X.Tick.Label.Font.Size = vg.Points(10)

	p.Y.Tick.Label.Font.Typeface = "Liberation"
	p.Y.Tick.Label.Font.Variant = "Sans"
	p.Y.Tick.Label.Font.Size = vg.Points(10)
}

// Plot renders a normalized profile (peak 1) as a wPx x hPx image.
func Plot(points []Point, opts PlotOptions, wPx, hPx float64) (image.Image, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("plot needs at least 2 points, have %d: %w", len(points), ErrEmptyProfile)
	}

	p := plot.New()
	p.Y.Min = -0.2
	p.Y.Max = 1.5
	setFonts(p)

	first := points[0].Position
	last := points[len(points)-1].Position
	span := math.Abs(last - first)

	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = "normalized intensity"
	p.X.Tick.Marker = StepTicks{Step: span / 10, Format: "%.1f"}
	p.Y.Tick.Marker = StepTicks{Step: 0.2, Format: "%.2f"}
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(points))
	for i, pt := range points {
		pts[i].X = pt.Position
		pts[i].Y = pt.Intensity
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	p.Add(line)

	for _, m := range opts.Markers {
		vpts := plotter.XYs{
			{X: m, Y: -0.1},
			{X: m, Y: 1.3},
		}
		vline, err := plotter.NewLine(vpts)
		if err != nil {
			return nil, err
		}
		vline.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		vline.Color = color.RGBA{R: 255, G: 0, B: 0, A: 255}
		p.Add(vline)
	}

	// Zero line
	hpts := plotter.XYs{
		{X: first, Y: 0.0},
		{X: last, Y: 0.0},
	}
	hline, err := plotter.NewLine(hpts)
	if err != nil {
		return nil, err
	}
	hline.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	hline.Color = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	p.Add(hline)

	const dpi = 96
	width := vg.Length(wPx) * vg.Inch / dpi
	height := vg.Length(hPx) * vg.Inch / dpi

	c := vgimg.New(width, height)
	dc := vgdraw.New(c)
	p.Draw(dc)

	return c.Image(), nil
}

// SavePlot renders a profile with Plot and writes it to a PNG file.
func SavePlot(filename string, points []Point, opts PlotOptions, wPx, hPx float64) (err error) {
	img, err := Plot(points, opts, wPx, hPx)
	if err != nil {
		return err
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return png.Encode(f, img)
}
