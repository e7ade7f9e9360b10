package glyphsim

import (
	"fmt"
	"image"
	"math"

	"github.com/wbrown/glyphsim/imageutil"
)

const (
	// DefaultCanonicalSize is the side of the canonical square that
	// normalized glyph images are scaled onto. Deliberately coarse: at
	// this size an 8px similarity window spans a third of the canvas,
	// so small stroke-phase differences between two renders are
	// tolerated while footprint mismatches still register.
	DefaultCanonicalSize = 24

	// cropPad is the margin kept around the ink bounding box when
	// cropping, in source pixels. It also catches the faint resampling
	// halo around previously scaled ink.
	cropPad = 2
)

// NormalizedImage is the canonical form of one render: ink cropped with
// a fixed margin and scaled onto a square canvas. Images normalized
// together as a pair always share identical Width and Height.
type NormalizedImage struct {
	Raw     *imageutil.GrayImage
	Width   int
	Height  int
	Encoded []byte
}

// DecodeAndFindBounds decodes encoded render bytes to greyscale and
// locates the ink bounding box in one pass over the pixels.
func DecodeAndFindBounds(imageBytes []byte) (*imageutil.GrayImage, InkBounds, error) {
	g, err := imageutil.DecodeGray(imageBytes)
	if err != nil {
		return nil, InkBounds{}, err
	}
	return g, FindInkBounds(g), nil
}

// FindInkBounds returns the smallest rectangle enclosing all pixels
// above the background threshold, or an empty InkBounds if none exist.
func FindInkBounds(g *imageutil.GrayImage) InkBounds {
	w, h := g.Width(), g.Height()
	b := InkBounds{MinX: w, MinY: h, MaxX: 0, MaxY: 0}
	found := false
	for y := 0; y < h; y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+w]
		for x, p := range row {
			if p <= backgroundThreshold {
				continue
			}
			found = true
			if x < b.MinX {
				b.MinX = x
			}
			if x+1 > b.MaxX {
				b.MaxX = x + 1
			}
			if y < b.MinY {
				b.MinY = y
			}
			if y+1 > b.MaxY {
				b.MaxY = y + 1
			}
		}
	}
	if !found {
		return InkBounds{}
	}
	return b
}

// InkCoverage returns the fraction of pixels above the background
// threshold. It is a filter signal, not a similarity metric.
func InkCoverage(g *imageutil.GrayImage) float64 {
	w, h := g.Width(), g.Height()
	if w == 0 || h == 0 {
		return 0
	}
	ink := 0
	for y := 0; y < h; y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+w]
		for _, p := range row {
			if p > backgroundThreshold {
				ink++
			}
		}
	}
	return float64(ink) / float64(w*h)
}

// InkWidth returns the ink bounding-box width in pixels.
func InkWidth(b InkBounds) int {
	return b.Width()
}

// NormalizeImage normalizes a single image against its own ink size.
// Returns ErrEmptyInk when the image holds no ink; a blank render must
// never be turned into a meaningless canonical canvas.
func NormalizeImage(g *imageutil.GrayImage, bounds InkBounds, canonical int) (*NormalizedImage, error) {
	if canonical <= 0 {
		canonical = DefaultCanonicalSize
	}
	if bounds.Empty() {
		return nil, ErrEmptyInk
	}
	refInk := bounds.Width()
	if bounds.Height() > refInk {
		refInk = bounds.Height()
	}
	scale := float64(canonical-2*cropPad) / float64(refInk)
	if limit := scaleLimit(g, bounds, canonical); scale > limit {
		scale = limit
	}
	return normalizeOnto(g, bounds, scale, canonical)
}

// NormalizePair normalizes two images jointly: a single scale factor,
// derived from the larger ink dimension of the two, is applied to both.
// A wide two-character sequence is therefore never shrunk relative to
// its narrow single-glyph counterpart before shapes are compared; only
// genuine shape differences remain.
//
// Normalizing an already jointly-normalized pair again is a no-op.
func NormalizePair(a, b *imageutil.GrayImage, boundsA, boundsB InkBounds, canonical int) (*NormalizedImage, *NormalizedImage, error) {
	if canonical <= 0 {
		canonical = DefaultCanonicalSize
	}
	if boundsA.Empty() || boundsB.Empty() {
		return nil, nil, ErrEmptyInk
	}

	refInk := boundsA.Width()
	for _, d := range []int{boundsA.Height(), boundsB.Width(), boundsB.Height()} {
		if d > refInk {
			refInk = d
		}
	}

	// Re-normalizing a jointly-normalized pair must be a no-op: same
	// dimensions, same ink bounds, same pixels. A pair is already
	// canonical when both canvases have canonical size, the shared
	// reference dimension fills the content area (up to the resampling
	// halo inside the crop margin), and both ink boxes sit centered.
	if refInk >= canonical-2*cropPad && refInk <= canonical &&
		isCanonical(a, boundsA, canonical) && isCanonical(b, boundsB, canonical) {
		na, err := passthrough(a, canonical)
		if err != nil {
			return nil, nil, err
		}
		nb, err := passthrough(b, canonical)
		if err != nil {
			return nil, nil, err
		}
		return na, nb, nil
	}

	// One factor for the whole pair. The tiny-glyph cap is part of it:
	// capping inside normalizeOnto would let the two sides diverge to
	// different effective scales whenever only one side hits its cap.
	scale := float64(canonical-2*cropPad) / float64(refInk)
	if limit := scaleLimit(a, boundsA, canonical); scale > limit {
		scale = limit
	}
	if limit := scaleLimit(b, boundsB, canonical); scale > limit {
		scale = limit
	}

	na, err := normalizeOnto(a, boundsA, scale, canonical)
	if err != nil {
		return nil, nil, err
	}
	nb, err := normalizeOnto(b, boundsB, scale, canonical)
	if err != nil {
		return nil, nil, err
	}
	return na, nb, nil
}

// scaleLimit caps the scale factor so the padded crop of a tiny glyph
// (a dot, a combining mark) cannot be blown up past the canvas.
func scaleLimit(g *imageutil.GrayImage, bounds InkBounds, canonical int) float64 {
	cw := minInt(g.Width(), bounds.MaxX+cropPad) - clampLow(bounds.MinX-cropPad)
	ch := minInt(g.Height(), bounds.MaxY+cropPad) - clampLow(bounds.MinY-cropPad)
	maxCrop := cw
	if ch > maxCrop {
		maxCrop = ch
	}
	return float64(canonical) / float64(maxCrop)
}

// normalizeOnto crops the ink box with its margin, applies the given
// scale factor, and pastes it with the ink box centered on a canonical
// square canvas.
func normalizeOnto(g *imageutil.GrayImage, bounds InkBounds, scale float64, canonical int) (*NormalizedImage, error) {
	crop := imageutil.CropGray(g, image.Rect(
		bounds.MinX-cropPad, bounds.MinY-cropPad,
		bounds.MaxX+cropPad, bounds.MaxY+cropPad,
	))

	scaled := crop
	scaledInkW := float64(bounds.Width()) * scale
	scaledInkH := float64(bounds.Height()) * scale
	if scale != 1.0 {
		sw := int(math.Round(float64(crop.Width()) * scale))
		sh := int(math.Round(float64(crop.Height()) * scale))
		if sw < 1 {
			sw = 1
		}
		if sh < 1 {
			sh = 1
		}
		if sw > canonical {
			sw = canonical
		}
		if sh > canonical {
			sh = canonical
		}
		scaled = imageutil.ResizeGray(crop, sw, sh, imageutil.InterpolationArea)
	}

	// Place so the ink box, not the padded crop, sits centered.
	padX := float64(bounds.MinX-clampLow(bounds.MinX-cropPad)) * scale
	padY := float64(bounds.MinY-clampLow(bounds.MinY-cropPad)) * scale
	offX := int(math.Round((float64(canonical)-scaledInkW)/2 - padX))
	offY := int(math.Round((float64(canonical)-scaledInkH)/2 - padY))

	canvas := imageutil.NewGrayImage(canonical, canonical)
	imageutil.PasteGray(canvas, scaled, offX, offY)

	encoded, err := imageutil.EncodePNG(canvas.Gray)
	if err != nil {
		return nil, fmt.Errorf("failed to encode normalized image: %w", err)
	}
	return &NormalizedImage{
		Raw:     canvas,
		Width:   canonical,
		Height:  canonical,
		Encoded: encoded,
	}, nil
}

// isCanonical reports whether an image already has canonical placement:
// canonical dimensions with its ink box centered.
func isCanonical(g *imageutil.GrayImage, bounds InkBounds, canonical int) bool {
	if g.Width() != canonical || g.Height() != canonical {
		return false
	}
	offX := (canonical - bounds.Width()) / 2
	offY := (canonical - bounds.Height()) / 2
	return abs(bounds.MinX-offX) <= 1 && abs(bounds.MinY-offY) <= 1
}

// passthrough wraps an already-canonical image without touching its
// pixels.
func passthrough(g *imageutil.GrayImage, canonical int) (*NormalizedImage, error) {
	encoded, err := imageutil.EncodePNG(g.Gray)
	if err != nil {
		return nil, fmt.Errorf("failed to encode normalized image: %w", err)
	}
	return &NormalizedImage{
		Raw:     g.Clone(),
		Width:   canonical,
		Height:  canonical,
		Encoded: encoded,
	}, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampLow(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
