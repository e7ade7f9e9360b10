// Package imageutil provides pure Go greyscale image processing
// primitives for glyph raster comparison.
package imageutil

import (
	"image"
	"image/color"
)

// GrayImage wraps image.Gray with convenience methods for pixel access.
type GrayImage struct {
	*image.Gray
}

// NewGrayImage creates a new GrayImage with the specified dimensions.
func NewGrayImage(width, height int) *GrayImage {
	return &GrayImage{
		Gray: image.NewGray(image.Rect(0, 0, width, height)),
	}
}

// GrayImageFromImage converts any image.Image to GrayImage.
func GrayImageFromImage(img image.Image) *GrayImage {
	if g, ok := img.(*image.Gray); ok && g.Bounds().Min == (image.Point{}) {
		return &GrayImage{Gray: g}
	}
	bounds := img.Bounds()
	gray := NewGrayImage(bounds.Dx(), bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x-bounds.Min.X, y-bounds.Min.Y, img.At(x, y))
		}
	}
	return gray
}

// Width returns the image width.
func (img *GrayImage) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *GrayImage) Height() int {
	return img.Bounds().Dy()
}

// GetGray returns the grayscale value at (x, y).
func (img *GrayImage) GetGray(x, y int) uint8 {
	return img.GrayAt(x, y).Y
}

// SetGrayValue sets the grayscale value at (x, y).
func (img *GrayImage) SetGrayValue(x, y int, v uint8) {
	img.Gray.SetGray(x, y, color.Gray{Y: v})
}

// Clone creates a deep copy of the image.
func (img *GrayImage) Clone() *GrayImage {
	clone := NewGrayImage(img.Width(), img.Height())
	copy(clone.Pix, img.Pix)
	return clone
}

// CropGray returns a copy of the given sub-rectangle of the image.
// The rectangle is clamped to the image bounds.
func CropGray(img *GrayImage, rect image.Rectangle) *GrayImage {
	rect = rect.Intersect(img.Bounds())
	out := NewGrayImage(rect.Dx(), rect.Dy())
	for y := 0; y < rect.Dy(); y++ {
		srcOff := (rect.Min.Y+y)*img.Stride + rect.Min.X
		dstOff := y * out.Stride
		copy(out.Pix[dstOff:dstOff+rect.Dx()], img.Pix[srcOff:srcOff+rect.Dx()])
	}
	return out
}

// PasteGray copies src onto dst with src's origin placed at (x, y) in dst.
// Pixels falling outside dst are discarded.
func PasteGray(dst, src *GrayImage, x, y int) {
	for sy := 0; sy < src.Height(); sy++ {
		dy := y + sy
		if dy < 0 || dy >= dst.Height() {
			continue
		}
		for sx := 0; sx < src.Width(); sx++ {
			dx := x + sx
			if dx < 0 || dx >= dst.Width() {
				continue
			}
			dst.Pix[dy*dst.Stride+dx] = src.Pix[sy*src.Stride+sx]
		}
	}
}

// RGBAImage wraps image.RGBA with convenience methods for pixel access.
// It exists for loading arbitrary source images and for the gocv
// comparison harness; the scoring pipeline itself works on GrayImage.
type RGBAImage struct {
	*image.RGBA
}

// NewRGBAImage creates a new RGBAImage with the specified dimensions.
func NewRGBAImage(width, height int) *RGBAImage {
	return &RGBAImage{
		RGBA: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// RGBAImageFromImage converts any image.Image to RGBAImage.
func RGBAImageFromImage(img image.Image) *RGBAImage {
	bounds := img.Bounds()
	rgba := NewRGBAImage(bounds.Dx(), bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.Set(x-bounds.Min.X, y-bounds.Min.Y, img.At(x, y))
		}
	}
	return rgba
}

// Width returns the image width.
func (img *RGBAImage) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *RGBAImage) Height() int {
	return img.Bounds().Dy()
}
