package imageutil

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"

	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
)

// DecodeGray decodes encoded image bytes (PNG, JPEG, GIF) into a
// grayscale image.
func DecodeGray(data []byte) (*GrayImage, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return GrayImageFromImage(img), nil
}

// EncodePNG encodes an image as PNG into a byte buffer.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// SavePNG saves an image as PNG to the specified path.
func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return png.Encode(f, img)
}

// LoadImage loads an image from the specified path as grayscale.
func LoadImage(path string) (*GrayImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return DecodeGray(data)
}
