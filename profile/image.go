package profile

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
)

// LoadGray16PNG loads a 16-bit grayscale PNG and returns it as a matrix with
// intensity = pixelValue / scale.
func LoadGray16PNG(filename string, scale float64) (matrix [][]float64, err error) {
	img, err := LoadImageFromFile(filename)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	h := bounds.Dy()
	w := bounds.Dx()

	matrix = make([][]float64, h)
	for y := 0; y < h; y++ {
		matrix[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			c := img.At(x+bounds.Min.X, y+bounds.Min.Y)
			gray, ok := c.(color.Gray16)
			if !ok {
				r, g, b, _ := c.RGBA()
				matrix[y][x] = float64((r+g+b)/3) / scale
			} else {
				matrix[y][x] = float64(gray.Y) / scale
			}
		}
	}
	return matrix, nil
}

// DrawCutOnImage returns a copy of src with the cut drawn as a red line, a red dot at its
// first sample and a green dot at its last.
func DrawCutOnImage(src image.Image, samples []Sample) (*image.RGBA, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyProfile
	}
	bounds := src.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, src, bounds.Min, draw.Src)

	start := samples[0]
	end := samples[len(samples)-1]
	drawLine(result, start.X, start.Y, end.X, end.Y, color.RGBA{R: 255, A: 255})
	drawDot(result, start.X, start.Y, 5, color.RGBA{R: 255, A: 255})
	drawDot(result, end.X, end.Y, 5, color.RGBA{G: 255, A: 255})

	return result, nil
}

// drawLine draws a 3 pixel wide line using Bresenham's algorithm.
func drawLine(img *image.RGBA, x1, y1, x2, y2 float64, col color.Color) {
	x1, y1 = math.Round(x1), math.Round(y1)
	x2, y2 = math.Round(x2), math.Round(y2)
	dx := math.Abs(x2 - x1)
	dy := math.Abs(y2 - y1)
	sx := -1.0
	if x1 < x2 {
		sx = 1.0
	}
	sy := -1.0
	if y1 < y2 {
		sy = 1.0
	}
	err := dx - dy

	for {
		for oy := -1; oy <= 1; oy++ {
			for ox := -1; ox <= 1; ox++ {
				setPixel(img, int(x1)+ox, int(y1)+oy, col)
			}
		}

		if math.Abs(x1-x2) < 1 && math.Abs(y1-y2) < 1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func drawDot(img *image.RGBA, cx, cy float64, radius int, col color.Color) {
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= radius*radius {
				setPixel(img, int(math.Round(cx))+x, int(math.Round(cy))+y, col)
			}
		}
	}
}

func setPixel(img *image.RGBA, x, y int, col color.Color) {
	b := img.Bounds()
	if x >= b.Min.X && x < b.Max.X && y >= b.Min.Y && y < b.Max.Y {
		img.Set(x, y, col)
	}
}

// LoadImageFromFile loads any PNG image file.
func LoadImageFromFile(filename string) (img image.Image, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	img, err = png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}
	return img, nil
}

// SaveImageToFile saves an image to a PNG file.
func SaveImageToFile(filename string, img image.Image) (err error) {
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
