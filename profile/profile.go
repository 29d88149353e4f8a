// Package profile extracts line profiles from sampled intensity matrices, measures their
// widths, and renders them as plots and annotated images.
package profile

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrNoIntersection is returned when a cut does not cross the grid.
var ErrNoIntersection = errors.New("profile: cut does not intersect grid")

// ErrEmptyProfile is returned by operations that need at least one point.
var ErrEmptyProfile = errors.New("profile: no points")

// Cut is a straight line through an intensity grid.
//
// Coordinates are in pixels with the origin on the grid's center sample (row n/2,
// column n/2). The line runs along (sin(theta), cos(theta)) in (column, row) space,
// theta = AngleDegrees, and is displaced OffsetPixels from the center along the normal
// (cos(theta), -sin(theta)).
type Cut struct {
	AngleDegrees float64
	OffsetPixels float64
}

// Horizontal returns a cut along a row, rowOffset rows below the center row.
func Horizontal(rowOffset float64) Cut {
	return Cut{AngleDegrees: 90, OffsetPixels: -rowOffset}
}

// Vertical returns a cut along a column, colOffset columns right of the center column.
func Vertical(colOffset float64) Cut {
	return Cut{AngleDegrees: 0, OffsetPixels: colOffset}
}

// Sample is one point on a cut.
type Sample struct {
	X        float64 // column, in pixels from the left edge
	Y        float64 // row, in pixels from the top edge
	Position float64 // signed distance along the cut from the foot of the normal through the center, in pixels
}

// Point is a single value of an extracted profile.
type Point struct {
	Position  float64 // distance along the cut, in the caller's length unit
	Intensity float64
}

type edgePoint struct {
	X, Y float64
	T    float64 // line parameter
}

// Samples returns the points of c on an n x n grid at one pixel spacing, ordered along the
// cut's direction. The first sample lies on the grid boundary.
func (c Cut) Samples(n int) ([]Sample, error) {
	if n < 2 {
		return nil, fmt.Errorf("grid of %d points: %w", n, ErrNoIntersection)
	}
	theta := c.AngleDegrees * math.Pi / 180.0
	lo := -float64(n / 2)
	hi := float64(n-1) - float64(n/2)

	start, end, dx, dy, err := boxIntersections(lo, hi, theta, c.OffsetPixels)
	if err != nil {
		return nil, err
	}

	length := end.T - start.T
	count := int(math.Floor(length+1e-9)) + 1
	center := float64(n / 2)
	samples := make([]Sample, count)
	for i := range samples {
		t := start.T + float64(i)
		samples[i] = Sample{
			X:        start.X + float64(i)*dx + center,
			Y:        start.Y + float64(i)*dy + center,
			Position: t,
		}
	}
	return samples, nil
}

// boxIntersections finds where a line crosses the square [lo, hi] x [lo, hi].
// theta is the angle of the line from the row axis toward the column axis and d its
// distance from the origin. The crossings are returned in order of increasing line
// parameter together with the line's direction vector.
func boxIntersections(lo, hi, theta, d float64) (edgePoint, edgePoint, float64, float64, error) {
	dx := math.Sin(theta)
	dy := math.Cos(theta)

	// Normal in the direction of the offset.
	nx := dy
	ny := -dx

	x0 := d * nx
	y0 := d * ny

	var crossings []edgePoint

	if math.Abs(dx) > 1e-12 {
		for _, edge := range []float64{lo, hi} {
			t := (edge - x0) / dx
			y := y0 + t*dy
			if y >= lo-1e-9 && y <= hi+1e-9 {
				crossings = append(crossings, edgePoint{X: edge, Y: y, T: t})
			}
		}
	}

	if math.Abs(dy) > 1e-12 {
		for _, edge := range []float64{lo, hi} {
			t := (edge - y0) / dy
			x := x0 + t*dx
			if x >= lo-1e-9 && x <= hi+1e-9 {
				crossings = append(crossings, edgePoint{X: x, Y: edge, T: t})
			}
		}
	}

	crossings = removeDuplicatePoints(crossings, 1e-9)
	if len(crossings) < 2 {
		return edgePoint{}, edgePoint{}, dx, dy, ErrNoIntersection
	}

	first, last := crossings[0], crossings[0]
	for _, p := range crossings[1:] {
		if p.T < first.T {
			first = p
		}
		if p.T > last.T {
			last = p
		}
	}
	return first, last, dx, dy, nil
}

func removeDuplicatePoints(pts []edgePoint, tol float64) []edgePoint {
	var result []edgePoint
	for _, p := range pts {
		duplicate := false
		for _, r := range result {
			if math.Abs(p.X-r.X) < tol && math.Abs(p.Y-r.Y) < tol {
				duplicate = true
				break
			}
		}
		if !duplicate {
			result = append(result, p)
		}
	}
	return result
}

// interpolate performs bilinear interpolation on a 2D matrix at the given (x, y)
// coordinates, clamping to the matrix edges.
func interpolate(matrix [][]float64, x, y float64) float64 {
	h := len(matrix)
	if h == 0 || len(matrix[0]) == 0 {
		return 0
	}
	w := len(matrix[0])
	if h == 1 || w == 1 {
		return matrix[clampIndex(y, h)][clampIndex(x, w)]
	}

	x = clamp(x, float64(w-1))
	y = clamp(y, float64(h-1))

	x0 := int(x)
	y0 := int(y)
	x1 := x0 + 1
	y1 := y0 + 1

	xFrac := x - float64(x0)
	yFrac := y - float64(y0)

	v00 := matrix[y0][x0]
	v01 := matrix[y0][x1]
	v10 := matrix[y1][x0]
	v11 := matrix[y1][x1]

	v0 := v00*(1-xFrac) + v01*xFrac
	v1 := v10*(1-xFrac) + v11*xFrac

	return v0*(1-yFrac) + v1*yFrac
}

func clamp(v, upper float64) float64 {
	if v < 0 {
		return 0
	}
	if v >= upper {
		return upper - 1e-9
	}
	return v
}

func clampIndex(v float64, n int) int {
	i := int(math.Round(v))
	return max(0, min(i, n-1))
}

// Extract samples intensity along c and scales the positions by pixelSize. For a
// centered Horizontal or Vertical cut the positions reproduce the grid's own axis.
func Extract(intensity [][]float64, c Cut, pixelSize float64) ([]Point, error) {
	samples, err := c.Samples(len(intensity))
	if err != nil {
		return nil, err
	}
	return ExtractSamples(intensity, samples, pixelSize), nil
}

// ExtractSamples interpolates intensity at precomputed samples.
func ExtractSamples(intensity [][]float64, samples []Sample, pixelSize float64) []Point {
	points := make([]Point, len(samples))
	for i, s := range samples {
		points[i] = Point{
			Position:  s.Position * pixelSize,
			Intensity: interpolate(intensity, s.X, s.Y),
		}
	}
	return points
}

// Peak returns the largest intensity in points.
func Peak(points []Point) (float64, error) {
	if len(points) == 0 {
		return 0, ErrEmptyProfile
	}
	vals := make([]float64, len(points))
	for i, p := range points {
		vals[i] = p.Intensity
	}
	return floats.Max(vals), nil
}

// Normalize returns a copy of points scaled so the peak intensity is 1. A profile that is
// zero everywhere is returned unscaled.
func Normalize(points []Point) []Point {
	out := make([]Point, len(points))
	copy(out, points)
	peak, err := Peak(points)
	if err != nil || peak == 0 {
		return out
	}
	for i := range out {
		out[i].Intensity /= peak
	}
	return out
}

// Crossings returns the positions where the profile passes through level, located by
// linear interpolation between neighbouring points.
func Crossings(points []Point, level float64) []float64 {
	var edges []float64
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		da, db := a.Intensity-level, b.Intensity-level
		if da == 0 {
			edges = append(edges, a.Position)
			continue
		}
		if da*db < 0 {
			f := da / (da - db)
			edges = append(edges, a.Position+f*(b.Position-a.Position))
		}
	}
	if n := len(points); n > 0 && points[n-1].Intensity == level {
		edges = append(edges, points[n-1].Position)
	}
	return edges
}

// FWHM returns the full width at half maximum: the distance between the outermost
// crossings of half the peak intensity. It is zero for a profile with no positive peak
// or one that drops to half its peak on fewer than two sides.
func FWHM(points []Point) (float64, error) {
	peak, err := Peak(points)
	if err != nil {
		return 0, err
	}
	if peak <= 0 {
		return 0, nil
	}
	edges := Crossings(points, peak/2)
	if len(edges) < 2 {
		return 0, nil
	}
	return math.Abs(edges[len(edges)-1] - edges[0]), nil
}
