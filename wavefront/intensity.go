package wavefront

import "gonum.org/v1/gonum/floats"

// Intensity returns |E|^2 computed as Re^2 + Im^2 for every sample.
func Intensity(e [][]complex128) [][]float64 {
	out := make([][]float64, len(e))
	for i := range e {
		out[i] = make([]float64, len(e[i]))
		for j, v := range e[i] {
			re, im := real(v), imag(v)
			out[i][j] = re*re + im*im
		}
	}
	return out
}

// TotalIntensity returns the sum of Intensity(e) over the grid.
func TotalIntensity(e [][]complex128) float64 {
	total := 0.0
	for _, row := range Intensity(e) {
		total += floats.Sum(row)
	}
	return total
}

// Power returns the intensity integrated over the field's area, sum(|E|^2) * dx^2.
func (f Field) Power() float64 {
	dx := f.Dx()
	return TotalIntensity(f.E) * dx * dx
}

// IntensityInside sums |E|^2 over the samples where mask is true.
func IntensityInside(e [][]complex128, mask [][]bool) float64 {
	total := 0.0
	for i := range e {
		for j, v := range e[i] {
			if mask[i][j] {
				re, im := real(v), imag(v)
				total += re*re + im*im
			}
		}
	}
	return total
}

// PeakIntensity returns the largest |E|^2 on the grid.
func PeakIntensity(e [][]complex128) float64 {
	peak := 0.0
	for _, row := range Intensity(e) {
		if len(row) > 0 {
			peak = max(peak, floats.Max(row))
		}
	}
	return peak
}
