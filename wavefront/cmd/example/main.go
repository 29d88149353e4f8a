// Example program demonstrating how to use the wavefront package to:
// 1. Build a plane-wave source from a photon energy
// 2. Clip it with a square slit and drift it a short distance
// 3. Focus it with an ideal thin lens and drift past the focal plane
// 4. Trip the under-resolved aperture diagnostic on a deliberately coarse grid
//
// Usage:
//
//	go run main.go
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/bob-anderson-ok/beamprop/wavefront"
)

func main() {
	fmt.Println("Wavefront Propagation Example")
	fmt.Println("=============================")

	// Diagnostics are printed to stderr as they are raised.
	wavefront.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	const (
		lambda = 500e-9 // m
		n      = 256
		dx     = 1e-6 // m
	)
	energy := wavefront.EnergyFromWavelength(lambda)
	fmt.Printf("\nPhoton energy for %.0f nm: %.4f eV\n", lambda*1e9, energy)

	beam := wavefront.PlaneSource(energy, 0, n, dx)
	fmt.Printf("Source: %d x %d points, spacing %.2f um, total intensity %.0f\n",
		n, n, beam.Dx()*1e6, wavefront.TotalIntensity(beam.E))

	beam, diags := wavefront.Slit(beam, 40, 40)
	fmt.Printf("After 40 x 40 um slit: total intensity %.0f, %d diagnostic(s)\n",
		wavefront.TotalIntensity(beam.E), len(diags))

	beam = wavefront.Drift(beam, lambda, 0.01)
	fmt.Printf("After 10 mm drift: total intensity %.1f\n", wavefront.TotalIntensity(beam.E))

	res := wavefront.Focus(beam, lambda, 0.5)
	lo, hi := res.Field.Extent()
	fmt.Printf("\nFocal plane of a 0.5 m lens: spacing %.3f mm, x from %.1f to %.1f mm\n",
		res.Field.Dx()*1e3, lo*1e3, hi*1e3)
	fmt.Printf("Propagating components on the focal-plane grid: %d of %d\n",
		res.Spectrum.Propagating(), n*n)

	after, err := wavefront.DriftWith(res.Field, res.Spectrum, 0.05)
	if err != nil {
		fmt.Println(fmt.Errorf("drift past focus failed: %w", err))
		os.Exit(1)
	}
	fmt.Printf("Peak intensity at focus %.4g, 50 mm later %.4g\n",
		wavefront.PeakIntensity(res.Field.E), wavefront.PeakIntensity(after.E))

	// A 1 mm slit on a 10-point grid with 400 um spacing passes only 9 points.
	fmt.Println("\nCoarse grid check:")
	coarse := wavefront.PlaneSource(1000, 0, 10, 400e-6)
	_, diags = wavefront.Slit(coarse, 1000, 1000)
	for _, d := range diags {
		fmt.Printf("  %s (%s, %d of %d points)\n", d, d.Kind, d.Pixels, d.Total)
	}

	fmt.Println("\nDone!")
}
