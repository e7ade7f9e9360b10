package glyphsim

// FilterReason explains why a (pair, font) combination was disqualified
// from carrying a similarity score.
type FilterReason int

const (
	// FilterNone means the pair was scored normally.
	FilterNone FilterReason = iota
	// FilterLowInk means one side's ink coverage fell below the
	// configured minimum; a near-blank render cannot attest to
	// similarity.
	FilterLowInk
	// FilterWidthRatio means the ink bounding-box widths differ by more
	// than the configured ratio; such pairs are not plausible
	// human-perceived confusables.
	FilterWidthRatio
	// FilterNoRender means the font produced no visible ink for one
	// side of the pair.
	FilterNoRender
)

func (r FilterReason) String() string {
	switch r {
	case FilterLowInk:
		return "lowInk"
	case FilterWidthRatio:
		return "widthRatio"
	case FilterNoRender:
		return "noRender"
	default:
		return "none"
	}
}

// filterPolicy holds the thresholds that disqualify degenerate pairs
// before scoring.
type filterPolicy struct {
	minInkCoverage float64
	maxWidthRatio  float64
}

// checkWidths applies the width-ratio rule to two ink bounding-box
// widths. A zero width on either side counts as no render rather than a
// ratio violation.
func (p filterPolicy) checkWidths(widthA, widthB int) FilterReason {
	if widthA <= 0 || widthB <= 0 {
		return FilterNoRender
	}
	ratio := float64(widthA) / float64(widthB)
	if ratio < 1 {
		ratio = 1 / ratio
	}
	if ratio > p.maxWidthRatio {
		return FilterWidthRatio
	}
	return FilterNone
}

// checkCoverage applies the ink-coverage rule to the two normalized
// images' coverage fractions.
func (p filterPolicy) checkCoverage(coverageA, coverageB float64) FilterReason {
	if coverageA < p.minInkCoverage || coverageB < p.minInkCoverage {
		return FilterLowInk
	}
	return FilterNone
}
