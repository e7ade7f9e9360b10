package glyphsim

import (
	"errors"
	"testing"
)

// fallbackRegistry builds a registry holding only the embedded Go
// Regular face, so rendering tests are host-independent.
func fallbackRegistry(t *testing.T) (*FontRegistry, *FontInfo) {
	t.Helper()
	reg, err := NewFontRegistry()
	if err != nil {
		t.Fatalf("NewFontRegistry failed: %v", err)
	}
	info, ok := reg.Lookup(FallbackFamily)
	if !ok || !info.Available {
		t.Fatal("Embedded fallback font must always be available")
	}
	return reg, info
}

func TestRenderProducesInk(t *testing.T) {
	t.Parallel()

	reg, font := fallbackRegistry(t)
	rn := NewRenderer(reg, 0)

	render, err := rn.Render("A", font)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	g, bounds, err := DecodeAndFindBounds(render.ImageBytes)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if bounds.Empty() {
		t.Fatal("Rendered 'A' should contain ink")
	}
	if g.Width() != DefaultRenderSize*3 || g.Height() != DefaultRenderSize*2 {
		t.Errorf("Canvas should be fixed at %dx%d, got %dx%d",
			DefaultRenderSize*3, DefaultRenderSize*2, g.Width(), g.Height())
	}
}

func TestRenderFixedCanvasAcrossGlyphWidths(t *testing.T) {
	t.Parallel()

	reg, font := fallbackRegistry(t)
	rn := NewRenderer(reg, 48)

	var dims [][2]int
	for _, text := range []string{"i", "m", "rn", "W"} {
		render, err := rn.Render(text, font)
		if err != nil {
			t.Fatalf("Render %q failed: %v", text, err)
		}
		g, _, err := DecodeAndFindBounds(render.ImageBytes)
		if err != nil {
			t.Fatalf("Decode %q failed: %v", text, err)
		}
		dims = append(dims, [2]int{g.Width(), g.Height()})
	}
	for i := 1; i < len(dims); i++ {
		if dims[i] != dims[0] {
			t.Errorf("Canvas size must not depend on glyph width: %v vs %v", dims[i], dims[0])
		}
	}
}

func TestRenderSharedBaseline(t *testing.T) {
	t.Parallel()

	reg, font := fallbackRegistry(t)
	rn := NewRenderer(reg, 64)

	// Glyphs without descenders in the same font share a baseline, so
	// their ink must end at the same bottom row (within hinting slop).
	var bottoms []int
	for _, text := range []string{"n", "m", "h"} {
		render, err := rn.Render(text, font)
		if err != nil {
			t.Fatalf("Render %q failed: %v", text, err)
		}
		_, bounds, err := DecodeAndFindBounds(render.ImageBytes)
		if err != nil {
			t.Fatalf("Decode %q failed: %v", text, err)
		}
		bottoms = append(bottoms, bounds.MaxY)
	}
	for i := 1; i < len(bottoms); i++ {
		if diff := bottoms[i] - bottoms[0]; diff < -2 || diff > 2 {
			t.Errorf("Baselines diverge: ink bottoms %v", bottoms)
		}
	}
}

// Baselines are derived from face metrics once at construction, not on
// every Render call.
func TestRendererBaselinePrecomputed(t *testing.T) {
	t.Parallel()

	reg, font := fallbackRegistry(t)
	rn := NewRenderer(reg, 64)

	baseline, ok := rn.baselines[font.Family]
	if !ok {
		t.Fatalf("No precomputed baseline for %s", font.Family)
	}
	if baseline <= 0 || baseline > rn.size*2 {
		t.Fatalf("Precomputed baseline %d out of range for size %d", baseline, rn.size)
	}
	f, ok := reg.face(font.Family)
	if !ok {
		t.Fatalf("Face for %s not loaded", font.Family)
	}
	if want := baselineFor(f, 64); baseline != want {
		t.Errorf("Precomputed baseline %d differs from face metrics %d", baseline, want)
	}
}

func TestRenderNoCoverage(t *testing.T) {
	t.Parallel()

	reg, font := fallbackRegistry(t)
	rn := NewRenderer(reg, 0)

	// Go Regular has no Thai coverage
	if _, err := rn.Render("ก", font); !errors.Is(err, ErrNoRender) {
		t.Errorf("Expected ErrNoRender for uncovered codepoint, got %v", err)
	}
}

func TestRenderBlankInput(t *testing.T) {
	t.Parallel()

	reg, font := fallbackRegistry(t)
	rn := NewRenderer(reg, 0)

	// A space has coverage but draws no ink; the raster inspection must
	// catch it.
	if _, err := rn.Render(" ", font); !errors.Is(err, ErrNoRender) {
		t.Errorf("Expected ErrNoRender for blank render, got %v", err)
	}
	if _, err := rn.Render("", font); !errors.Is(err, ErrNoRender) {
		t.Errorf("Expected ErrNoRender for empty text, got %v", err)
	}
}

func TestRenderUnavailableFont(t *testing.T) {
	t.Parallel()

	reg, _ := fallbackRegistry(t)
	rn := NewRenderer(reg, 0)

	missing := &FontInfo{Family: "No Such Font"}
	if _, err := rn.Render("A", missing); !errors.Is(err, ErrNoRender) {
		t.Errorf("Expected ErrNoRender for unavailable font, got %v", err)
	}
}

// TestJointScaleInvariance is the calibration gate for the whole
// pipeline: "rn" against "m" must not be penalized merely for the
// sequence's greater raw width.
func TestJointScaleInvariance(t *testing.T) {
	t.Parallel()

	reg, font := fallbackRegistry(t)
	scorer := NewScorer(reg)

	result, err := scorer.ScorePair(ConfusablePair{Source: "rn", Target: "m"}, font)
	if err != nil {
		t.Fatalf("ScorePair failed: %v", err)
	}
	if result.Filtered {
		t.Fatalf("rn/m must not be filtered, got %s", result.FilterReason)
	}
	if !result.Scored {
		t.Fatal("rn/m must be scored")
	}
	if result.Score <= 0.75 {
		t.Errorf("rn/m should score above 0.75 after joint normalization, got %f", result.Score)
	}
}

// TestNegativeControls: deliberately mismatched footprints must be
// width-filtered or score clearly low.
func TestNegativeControls(t *testing.T) {
	t.Parallel()

	reg, font := fallbackRegistry(t)
	scorer := NewScorer(reg)

	controls := []ConfusablePair{
		{Source: "ww", Target: "n"},
		{Source: "mm", Target: "n"},
		{Source: "aa", Target: "m"},
	}

	for _, pair := range controls {
		result, err := scorer.ScorePair(pair, font)
		if err != nil {
			t.Fatalf("ScorePair %q/%q failed: %v", pair.Source, pair.Target, err)
		}
		if result.Filtered {
			if result.FilterReason != FilterWidthRatio {
				t.Errorf("%q/%q filtered for %s, expected width ratio",
					pair.Source, pair.Target, result.FilterReason)
			}
			continue
		}
		if !result.Scored {
			t.Errorf("%q/%q neither filtered nor scored", pair.Source, pair.Target)
			continue
		}
		if result.Score >= 0.5 {
			t.Errorf("%q/%q scored %f, expected below 0.5 when unfiltered",
				pair.Source, pair.Target, result.Score)
		}
	}
}
