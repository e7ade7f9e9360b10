package glyphsim

import (
	"fmt"
	"image"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/wbrown/glyphsim/imageutil"
)

const (
	// DefaultRenderSize is the reference point size glyphs are drawn at.
	DefaultRenderSize = 64

	// renderDPI keeps point size equal to pixel size.
	renderDPI = 72

	// backgroundThreshold separates background from ink. Renders are
	// white-on-black, so anti-aliased edge pixels above this greyscale
	// value count as ink. Kept low so thin serifs and dots survive,
	// for the same reason a low alpha threshold preserves detail when
	// thresholding anti-aliased text.
	backgroundThreshold = 32
)

// Renderer rasterizes characters and short sequences at a fixed
// reference size on a fixed canvas with a fixed baseline, so ink
// bounding boxes extracted from its output are mutually comparable.
// A Renderer is immutable after construction and safe for concurrent
// use.
type Renderer struct {
	registry  *FontRegistry
	size      int
	baselines map[string]int
}

// NewRenderer creates a renderer drawing at the given point size from
// the given registry. A size of 0 or less selects DefaultRenderSize.
// Baselines are computed here, once per loaded font; the registry never
// changes afterwards.
func NewRenderer(registry *FontRegistry, size int) *Renderer {
	if size <= 0 {
		size = DefaultRenderSize
	}
	rn := &Renderer{
		registry:  registry,
		size:      size,
		baselines: make(map[string]int),
	}
	if registry != nil {
		for _, info := range registry.ListFonts() {
			if f, ok := registry.face(info.Family); ok {
				rn.baselines[info.Family] = baselineFor(f, size)
			}
		}
	}
	return rn
}

// Size returns the configured render size in points.
func (rn *Renderer) Size() int {
	return rn.size
}

// canvasBounds is the fixed canvas for one render: wide enough for a
// short sequence at the reference size, tall enough for ascenders and
// descenders.
func (rn *Renderer) canvasBounds() image.Rectangle {
	return image.Rect(0, 0, rn.size*3, rn.size*2)
}

// Render draws text as one continuous run in the given font and returns
// the PNG-encoded raster. Sequences are drawn in a single DrawString
// call, never composited glyph by glyph, because adjacent-glyph fusion
// ("rn" imitating "m") is exactly the effect under study.
//
// Returns ErrNoRender when the font lacks coverage or when the drawn
// canvas contains no ink: fonts routinely report success while drawing
// nothing, so the output raster is inspected rather than trusted.
func (rn *Renderer) Render(text string, info *FontInfo) (*GlyphRender, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", ErrNoRender)
	}
	if info == nil || !info.Available {
		return nil, fmt.Errorf("%w: font unavailable", ErrNoRender)
	}
	f, ok := rn.registry.face(info.Family)
	if !ok {
		return nil, fmt.Errorf("%w: font %s not loaded", ErrNoRender, info.Family)
	}
	if !rn.registry.Covers(info, text) {
		return nil, fmt.Errorf("%w: %s lacks coverage for %q", ErrNoRender, info.Family, text)
	}

	canvas := image.NewGray(rn.canvasBounds())

	ctx := freetype.NewContext()
	ctx.SetDPI(renderDPI)
	ctx.SetFont(f)
	ctx.SetFontSize(float64(rn.size))
	ctx.SetClip(canvas.Bounds())
	ctx.SetDst(canvas)
	ctx.SetSrc(image.White)
	ctx.SetHinting(font.HintingFull)

	// Fixed baseline from the face's ascent so every render of this
	// font sits at the same vertical position regardless of content.
	baseline, ok := rn.baselines[info.Family]
	if !ok {
		baseline = rn.size
	}
	if _, err := ctx.DrawString(text, freetype.Pt(rn.size/4, baseline)); err != nil {
		return nil, fmt.Errorf("%w: draw failed: %v", ErrNoRender, err)
	}

	if !hasInk(canvas) {
		return nil, fmt.Errorf("%w: %s drew blank for %q", ErrNoRender, info.Family, text)
	}

	encoded, err := imageutil.EncodePNG(canvas)
	if err != nil {
		return nil, err
	}
	return &GlyphRender{ImageBytes: encoded}, nil
}

// baselineFor computes the baseline row for a font at the given size
// from the face's metrics, converted from 26.6 fixed point.
func baselineFor(f *truetype.Font, size int) int {
	face := truetype.NewFace(f, &truetype.Options{
		Size:    float64(size),
		DPI:     renderDPI,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	ascent := int(face.Metrics().Ascent >> 6)
	if ascent <= 0 || ascent > size*2 {
		ascent = size
	}
	return ascent
}

// hasInk reports whether any pixel exceeds the background threshold.
func hasInk(img *image.Gray) bool {
	for _, p := range img.Pix {
		if p > backgroundThreshold {
			return true
		}
	}
	return false
}
