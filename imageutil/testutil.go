package imageutil

import "math"

// CreateSolidGray creates a uniform grayscale image.
func CreateSolidGray(width, height int, v uint8) *GrayImage {
	img := NewGrayImage(width, height)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// CreateGradientGray creates a horizontal gradient test image.
func CreateGradientGray(width, height int) *GrayImage {
	img := NewGrayImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Pix[y*img.Stride+x] = uint8(255 * x / (width - 1))
		}
	}
	return img
}

// CreateCheckerboardGray creates a checkerboard pattern for structure tests.
func CreateCheckerboardGray(width, height, squareSize int) *GrayImage {
	img := NewGrayImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if ((x/squareSize)+(y/squareSize))%2 == 0 {
				img.Pix[y*img.Stride+x] = 255
			}
		}
	}
	return img
}

// CreateStrokeGray creates a black canvas with full-ink vertical strokes
// of the given width, starting at the given x offsets. It approximates
// the stem structure of rendered glyphs for normalizer and filter tests.
func CreateStrokeGray(width, height, strokeWidth int, offsets ...int) *GrayImage {
	img := NewGrayImage(width, height)
	for _, off := range offsets {
		for y := 0; y < height; y++ {
			for x := off; x < off+strokeWidth && x < width; x++ {
				if x >= 0 {
					img.Pix[y*img.Stride+x] = 255
				}
			}
		}
	}
	return img
}

// CreateBoxGray creates a black canvas with a filled white rectangle.
func CreateBoxGray(width, height, x0, y0, x1, y1 int) *GrayImage {
	img := NewGrayImage(width, height)
	for y := y0; y < y1 && y < height; y++ {
		for x := x0; x < x1 && x < width; x++ {
			img.Pix[y*img.Stride+x] = 255
		}
	}
	return img
}

// CalculateMSEGray calculates the Mean Squared Error between two
// grayscale images.
func CalculateMSEGray(img1, img2 *GrayImage) float64 {
	if img1.Width() != img2.Width() || img1.Height() != img2.Height() {
		return math.MaxFloat64
	}

	width, height := img1.Width(), img1.Height()
	var sumSq float64
	count := float64(width * height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			d := float64(img1.GrayAt(x, y).Y) - float64(img2.GrayAt(x, y).Y)
			sumSq += d * d
		}
	}

	return sumSq / count
}
