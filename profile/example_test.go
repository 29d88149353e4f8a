package profile_test

import (
	"fmt"
	"log"
	"math"

	"github.com/bob-anderson-ok/beamprop/profile"
)

// Example extracts the horizontal profile through a Gaussian spot sampled on a 1 um grid
// and measures its width.
func Example() {
	const (
		n     = 64
		sigma = 5.0 // pixels
	)
	spot := make([][]float64, n)
	for i := range spot {
		spot[i] = make([]float64, n)
		for j := range spot[i] {
			dx, dy := float64(j-n/2), float64(i-n/2)
			spot[i][j] = math.Exp(-(dx*dx + dy*dy) / (2 * sigma * sigma))
		}
	}

	points, err := profile.Extract(spot, profile.Horizontal(0), 1.0)
	if err != nil {
		log.Fatalf("Failed to extract profile: %v", err)
	}
	fmt.Printf("Extracted %d profile points from %.0f to %.0f um\n",
		len(points), points[0].Position, points[len(points)-1].Position)

	width, err := profile.FWHM(points)
	if err != nil {
		log.Fatalf("Failed to measure width: %v", err)
	}
	fmt.Printf("FWHM: %.1f um\n", width)

	// Output:
	// Extracted 64 profile points from -32 to 31 um
	// FWHM: 11.8 um
}
