package main

import (
	"fmt"
	"image"
	"image/color"

	"gonum.org/v1/plot"

	// Liberation fonts register automatically on import
	_ "gonum.org/v1/plot/font/liberation"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/bob-anderson-ok/beamprop/profile"
)

// profilePlotOptions titles a normalized profile with its peak and marks its half-maximum
// crossings.
func profilePlotOptions(name, direction, xLabel string, points, norm []profile.Point) profile.PlotOptions {
	title := fmt.Sprintf("%s profile through %s", direction, name)
	if peak, err := profile.Peak(points); err == nil {
		title += fmt.Sprintf(" (peak %0.4g)", peak)
	}
	return profile.PlotOptions{
		Title:   title,
		XLabel:  xLabel,
		Markers: profile.Crossings(norm, 0.5),
	}
}

// makeProfilePlot plots a normalized profile with its half-maximum crossings marked.
func makeProfilePlot(name, direction, xLabel string, points []profile.Point, wPx, hPx float64) (image.Image, error) {
	norm := profile.Normalize(points)
	return profile.Plot(norm, profilePlotOptions(name, direction, xLabel, points, norm), wPx, hPx)
}

// saveProfilePlot is makeProfilePlot written straight to a PNG file.
func saveProfilePlot(filename, name, direction, xLabel string, points []profile.Point, wPx, hPx float64) error {
	norm := profile.Normalize(points)
	return profile.SavePlot(filename, norm, profilePlotOptions(name, direction, xLabel, points, norm), wPx, hPx)
}

// makePowerPlot plots the power of each saved stage relative to the largest one.
func makePowerPlot(stages []savedStage, title, filename string) error {
	if len(stages) == 0 {
		return nil
	}

	p := plot.New()

	// Modify the font fields directly on existing styles
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

	p.Title.Text = "Power along the beamline"
	if title != "" {
		p.Title.Text += ": " + title
	}
	p.X.Label.Text = "Stage"
	p.Y.Label.Text = "Relative power"

	p.Y.Tick.Marker = profile.StepTicks{Step: 0.1, Format: "%.2f"}
	p.Add(plotter.NewGrid()) // grid + ticks

	p.Y.Min = 0.0
	p.Y.Max = 1.1

	// Find the max power - we will use that to calculate relative power
	var maxPower = 0.0
	for _, s := range stages {
		if s.Power > maxPower {
			maxPower = s.Power
		}
	}
	if maxPower == 0 {
		maxPower = 1
	}

	n := len(stages)
	names := make([]string, n)
	pts := make(plotter.XYs, n)
	for i, s := range stages {
		names[i] = s.Name
		pts[i].X = float64(i)
		pts[i].Y = s.Power / maxPower
	}
	p.NominalX(names...)

	linePoints, scatterPoints, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	linePoints.Color = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	linePoints.Width = vg.Points(1)

	scatterPoints.Shape = draw.CircleGlyph{}
	scatterPoints.Radius = vg.Points(2)
	scatterPoints.Color = color.RGBA{R: 120, G: 120, B: 120, A: 255}

	p.Add(linePoints, scatterPoints)

	return p.Save(8*vg.Inch, 4*vg.Inch, filename)
}
