package wavefront

import "gonum.org/v1/gonum/dsp/fourier"

// ForwardTransform returns the centered 2D discrete Fourier transform of g:
// fftshift(fft2(ifftshift(g))). The sample at (N/2, N/2) is the origin both before and
// after the transform. g is not modified.
func ForwardTransform(g [][]complex128) [][]complex128 {
	return centeredTransform(g, true)
}

// InverseTransform returns fftshift(ifft2(ifftshift(g))), normalized so that
// InverseTransform(ForwardTransform(g)) reproduces g to rounding error.
func InverseTransform(g [][]complex128) [][]complex128 {
	return centeredTransform(g, false)
}

func centeredTransform(g [][]complex128, forward bool) [][]complex128 {
	h := len(g)
	if h == 0 || len(g[0]) == 0 {
		return [][]complex128{}
	}
	w := len(g[0])

	rowFFT := fourier.NewCmplxFFT(w)
	colFFT := fourier.NewCmplxFFT(h)

	// ifftshift moves the grid center to index 0 before transforming.
	a := make([][]complex128, h)
	for y := 0; y < h; y++ {
		a[y] = make([]complex128, w)
		src := g[colFFT.UnshiftIdx(y)]
		for x := 0; x < w; x++ {
			a[y][x] = src[rowFFT.UnshiftIdx(x)]
		}
	}

	fft2InPlace(a, rowFFT, colFFT, forward)

	if !forward {
		// gonum transforms are unnormalized: forward then inverse multiplies by h*w.
		s := complex(1/float64(h*w), 0)
		for y := range a {
			for x := range a[y] {
				a[y][x] *= s
			}
		}
	}

	out := make([][]complex128, h)
	for y := 0; y < h; y++ {
		out[y] = make([]complex128, w)
		src := a[colFFT.ShiftIdx(y)]
		for x := 0; x < w; x++ {
			out[y][x] = src[rowFFT.ShiftIdx(x)]
		}
	}
	return out
}

// fft2InPlace transforms rows then columns.
func fft2InPlace(a [][]complex128, rowFFT, colFFT *fourier.CmplxFFT, forward bool) {
	h := len(a)
	w := len(a[0])

	tmp := make([]complex128, w)
	for y := 0; y < h; y++ {
		copy(tmp, a[y])
		if forward {
			rowFFT.Coefficients(tmp, tmp)
		} else {
			rowFFT.Sequence(tmp, tmp)
		}
		copy(a[y], tmp)
	}

	col := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = a[y][x]
		}
		if forward {
			colFFT.Coefficients(col, col)
		} else {
			colFFT.Sequence(col, col)
		}
		for y := 0; y < h; y++ {
			a[y][x] = col[y]
		}
	}
}
