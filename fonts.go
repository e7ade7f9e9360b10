package glyphsim

import (
	"fmt"
	"os"
	"strings"

	"github.com/flopp/go-findfont"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

// FallbackFamily is the family name of the embedded Go Regular face.
// It is always present in a registry, so the pipeline works on hosts
// with no usable system fonts.
const FallbackFamily = "Go Regular"

// specializedMarkers identify symbol and coverage fonts by family name.
var specializedMarkers = []string{
	"symbol", "emoji", "dingbat", "wingding", "webding", "music", "braille",
}

// FontRegistry resolves font families to parsed TrueType fonts once, at
// process start. It is read-only after construction and safe for
// concurrent use without synchronization.
type FontRegistry struct {
	fonts []*FontInfo
	faces map[string]*truetype.Font
}

// NewFontRegistry locates the requested families on the host, parses
// the ones it can find, and always adds the embedded Go Regular face as
// a guaranteed fallback. Families that cannot be located are kept in
// the listing with Available=false rather than dropped, so callers can
// report on them.
func NewFontRegistry(families ...string) (*FontRegistry, error) {
	reg := &FontRegistry{
		faces: make(map[string]*truetype.Font),
	}

	for _, family := range families {
		info := &FontInfo{
			Family:   family,
			Category: categorizeFamily(family),
		}
		path, err := findfont.Find(family)
		if err == nil && path != "" {
			if f, perr := loadFont(path); perr == nil {
				info.Path = path
				info.Available = true
				reg.faces[family] = f
			}
		}
		reg.fonts = append(reg.fonts, info)
	}

	fallback, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded fallback font: %w", err)
	}
	reg.faces[FallbackFamily] = fallback
	reg.fonts = append(reg.fonts, &FontInfo{
		Family:    FallbackFamily,
		Available: true,
		Category:  FontStandard,
	})

	return reg, nil
}

// loadFont loads a TrueType font from file.
func loadFont(path string) (*truetype.Font, error) {
	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	f, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}
	return f, nil
}

// categorizeFamily classifies a family name as standard or specialized.
func categorizeFamily(family string) FontCategory {
	lower := strings.ToLower(family)
	for _, marker := range specializedMarkers {
		if strings.Contains(lower, marker) {
			return FontSpecialized
		}
	}
	return FontStandard
}

// ListFonts returns all registered font descriptors, available or not,
// in registration order with the embedded fallback last.
func (reg *FontRegistry) ListFonts() []*FontInfo {
	out := make([]*FontInfo, len(reg.fonts))
	copy(out, reg.fonts)
	return out
}

// Lookup returns the descriptor for a family, if registered.
func (reg *FontRegistry) Lookup(family string) (*FontInfo, bool) {
	for _, info := range reg.fonts {
		if info.Family == family {
			return info, true
		}
	}
	return nil, false
}

// QueryCoverage returns the available fonts whose character map covers
// the given codepoint, standard fonts ranked before specialized ones.
func (reg *FontRegistry) QueryCoverage(r rune) []*FontInfo {
	var standard, specialized []*FontInfo
	for _, info := range reg.fonts {
		if !info.Available || !reg.covers(info, r) {
			continue
		}
		if info.Category == FontSpecialized {
			specialized = append(specialized, info)
		} else {
			standard = append(standard, info)
		}
	}
	return append(standard, specialized...)
}

// DiscoverFallback returns some available font covering the codepoint,
// preferring specialized coverage fonts over standard text fonts.
func (reg *FontRegistry) DiscoverFallback(r rune) (*FontInfo, bool) {
	covering := reg.QueryCoverage(r)
	if len(covering) == 0 {
		return nil, false
	}
	return covering[len(covering)-1], true
}

// Covers reports whether the font's character map contains a glyph for
// every rune of the text. A zero glyph index is the TrueType missing
// glyph; this is a necessary precondition for rendering but not
// sufficient, since fonts can still draw blank boxes. The renderer
// verifies actual ink separately.
func (reg *FontRegistry) Covers(info *FontInfo, text string) bool {
	f, ok := reg.faces[info.Family]
	if !ok {
		return false
	}
	for _, r := range text {
		if f.Index(r) == 0 {
			return false
		}
	}
	return true
}

func (reg *FontRegistry) covers(info *FontInfo, r rune) bool {
	f, ok := reg.faces[info.Family]
	return ok && f.Index(r) != 0
}

// face returns the parsed font for a family, if loaded.
func (reg *FontRegistry) face(family string) (*truetype.Font, bool) {
	f, ok := reg.faces[family]
	return f, ok
}
