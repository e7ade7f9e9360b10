// Package glyphsim scores pairs of rendered glyphs for visual
// confusability. A candidate pair (a source character or short sequence
// and a single target character) is rendered per font, normalized to a
// shared scale, filtered for degenerate geometry, and scored with a
// structural similarity metric. Scoring is distributed across a fixed
// worker pool with results returned in submission order.
package glyphsim

import "errors"

var (
	// ErrNoRender indicates a font cannot produce visible ink for the
	// requested character or sequence. This is an expected outcome, not
	// a failure: absence of a render is itself data.
	ErrNoRender = errors.New("font produced no visible render")

	// ErrEmptyInk indicates an image contains no pixels above the
	// background threshold.
	ErrEmptyInk = errors.New("image contains no ink")

	// ErrIntegrity indicates a scoring batch came back with missing or
	// duplicated work indices. This is a coordinator bug and fatal to
	// the batch.
	ErrIntegrity = errors.New("batch result indices violate integrity")
)

// FontCategory classifies a font for reporting purposes.
type FontCategory int

const (
	// FontStandard is a general-purpose text font.
	FontStandard FontCategory = iota
	// FontSpecialized covers symbol, emoji, and fallback-coverage fonts.
	FontSpecialized
)

func (c FontCategory) String() string {
	if c == FontSpecialized {
		return "specialized"
	}
	return "standard"
}

// FontInfo describes one discovered font. Instances are created by the
// registry during initialization and never mutated afterwards, so they
// may be shared freely across workers.
type FontInfo struct {
	Family    string
	Path      string
	Available bool
	Category  FontCategory
}

// GlyphRender is the rasterized output for one character-or-sequence in
// one font: an encoded (PNG) image at the renderer's fixed canvas size.
type GlyphRender struct {
	ImageBytes []byte
}

// InkBounds is the smallest rectangle enclosing all ink pixels of a
// decoded render, in pixel coordinates. MaxX/MaxY are exclusive.
type InkBounds struct {
	MinX, MinY, MaxX, MaxY int
}

// Empty reports whether no ink pixels were found.
func (b InkBounds) Empty() bool {
	return b.MaxX <= b.MinX || b.MaxY <= b.MinY
}

// Width returns the ink width in pixels.
func (b InkBounds) Width() int {
	if b.Empty() {
		return 0
	}
	return b.MaxX - b.MinX
}

// Height returns the ink height in pixels.
func (b InkBounds) Height() int {
	if b.Empty() {
		return 0
	}
	return b.MaxY - b.MinY
}

// ConfusablePair is one candidate of interest: a source character or
// short sequence suspected of imitating a single target character.
type ConfusablePair struct {
	Source string
	Target string
}

// BatchItem is one scoring request: a candidate pair plus the fonts to
// render it in. Each (pair, font) combination becomes one result row.
type BatchItem struct {
	PairIndex int
	Source    string
	Target    string
	Fonts     []*FontInfo
}

// BatchResult is one output row of a scoring batch, in input order.
// Score is only meaningful when Scored is true; a filtered row never
// carries an unqualified score. Err records a per-item processing
// failure (a decode error, for example) without aborting the batch.
type BatchResult struct {
	PairIndex    int
	FontFamily   string
	Score        float64
	Scored       bool
	Filtered     bool
	FilterReason FilterReason
	Err          error
}
