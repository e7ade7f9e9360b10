package glyphsim

import (
	"errors"
	"fmt"
)

// Default filter thresholds.
const (
	// DefaultMinInkCoverage is the minimum fraction of ink pixels a
	// normalized image needs on either side for the pair to be scored.
	DefaultMinInkCoverage = 0.03

	// DefaultMaxWidthRatio is the maximum allowed ratio between the two
	// ink bounding-box widths.
	DefaultMaxWidthRatio = 2.0
)

// Scorer is the parallel scoring coordinator: it explodes candidate
// pairs across fonts into independent work items, renders and decodes
// each side once up front, dispatches the items over a bounded worker
// pool, and reassembles results in submission order.
//
// A Scorer is immutable after construction and safe for concurrent use.
type Scorer struct {
	registry *FontRegistry
	renderer *Renderer

	workers        int
	renderSize     int
	canonicalSize  int
	minInkCoverage float64
	maxWidthRatio  float64
	similarity     SimilarityFunc
}

// ScorerOption is a functional option for configuring a Scorer.
type ScorerOption func(*Scorer)

// NewScorer creates a Scorer over the given read-only font registry.
// Defaults: DefaultRenderSize, DefaultCanonicalSize,
// DefaultMinInkCoverage, DefaultMaxWidthRatio, SSIMGray similarity,
// one worker per CPU.
func NewScorer(registry *FontRegistry, opts ...ScorerOption) *Scorer {
	s := &Scorer{
		registry:       registry,
		renderSize:     DefaultRenderSize,
		canonicalSize:  DefaultCanonicalSize,
		minInkCoverage: DefaultMinInkCoverage,
		maxWidthRatio:  DefaultMaxWidthRatio,
		similarity:     SSIMGray,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.renderer = NewRenderer(registry, s.renderSize)
	return s
}

// WithWorkers bounds the worker pool size. Zero or negative selects one
// worker per CPU.
func WithWorkers(n int) ScorerOption {
	return func(s *Scorer) {
		s.workers = n
	}
}

// WithRenderSize sets the reference render size in points.
func WithRenderSize(size int) ScorerOption {
	return func(s *Scorer) {
		s.renderSize = size
	}
}

// WithCanonicalSize sets the side of the canonical normalized square.
func WithCanonicalSize(size int) ScorerOption {
	return func(s *Scorer) {
		s.canonicalSize = size
	}
}

// WithInkThreshold sets the minimum ink-coverage fraction.
func WithInkThreshold(min float64) ScorerOption {
	return func(s *Scorer) {
		s.minInkCoverage = min
	}
}

// WithMaxWidthRatio sets the maximum ink-width ratio.
func WithMaxWidthRatio(max float64) ScorerOption {
	return func(s *Scorer) {
		s.maxWidthRatio = max
	}
}

// WithSimilarityFunc swaps the similarity strategy. SSIMGray and
// SSIMReference are interchangeable here.
func WithSimilarityFunc(fn SimilarityFunc) ScorerOption {
	return func(s *Scorer) {
		s.similarity = fn
	}
}

// Renderer exposes the scorer's renderer for callers that want raw
// renders (debug dumps, figure generation).
func (s *Scorer) Renderer() *Renderer {
	return s.renderer
}

// ScoreBatch scores every (pair, font) combination and returns one row
// per combination in input order. Per-item failures (no render, decode
// failure, degenerate geometry) are encoded in their rows; the only
// batch-fatal condition is an integrity violation of the reassembly
// contract.
func (s *Scorer) ScoreBatch(items []BatchItem) ([]BatchResult, error) {
	var rows []BatchResult
	var work []WorkItem

	for _, item := range items {
		for _, font := range item.Fonts {
			idx := len(rows)
			row := BatchResult{
				PairIndex:  item.PairIndex,
				FontFamily: fontFamily(font),
			}

			wi, reason, err := s.prepare(idx, item, font)
			switch {
			case err != nil:
				row.Err = err
			case reason != FilterNone:
				row.Filtered = true
				row.FilterReason = reason
			default:
				work = append(work, wi)
			}
			rows = append(rows, row)
		}
	}

	pool := newWorkerPool(s.workers)
	results := pool.run(work, s.scoreItem)

	byIdx, err := reassemble(work, results)
	if err != nil {
		return nil, err
	}

	for idx, r := range byIdx {
		if idx < 0 || idx >= len(rows) {
			return nil, fmt.Errorf("%w: idx %d outside batch of %d rows", ErrIntegrity, idx, len(rows))
		}
		row := &rows[idx]
		row.Score = r.Score
		row.Scored = r.Scored
		row.Filtered = r.FilterReason != FilterNone
		row.FilterReason = r.FilterReason
		row.Err = r.Err
	}

	return rows, nil
}

// prepare renders and decodes both sides of one combination on the
// coordinating goroutine, producing a self-contained work item. A
// missing render or empty ink short-circuits to a filter reason; a
// decode failure is returned as the item's error.
func (s *Scorer) prepare(idx int, item BatchItem, font *FontInfo) (WorkItem, FilterReason, error) {
	renderA, err := s.renderer.Render(item.Source, font)
	if err != nil {
		if errors.Is(err, ErrNoRender) {
			return WorkItem{}, FilterNoRender, nil
		}
		return WorkItem{}, FilterNone, err
	}
	renderB, err := s.renderer.Render(item.Target, font)
	if err != nil {
		if errors.Is(err, ErrNoRender) {
			return WorkItem{}, FilterNoRender, nil
		}
		return WorkItem{}, FilterNone, err
	}

	pixelsA, boundsA, err := DecodeAndFindBounds(renderA.ImageBytes)
	if err != nil {
		return WorkItem{}, FilterNone, fmt.Errorf("source decode: %w", err)
	}
	pixelsB, boundsB, err := DecodeAndFindBounds(renderB.ImageBytes)
	if err != nil {
		return WorkItem{}, FilterNone, fmt.Errorf("target decode: %w", err)
	}

	// A render with empty ink never proceeds to scoring.
	if boundsA.Empty() || boundsB.Empty() {
		return WorkItem{}, FilterNoRender, nil
	}

	return WorkItem{
		Idx:            idx,
		PixelsA:        pixelsA,
		PixelsB:        pixelsB,
		BoundsA:        boundsA,
		BoundsB:        boundsB,
		CanonicalSize:  s.canonicalSize,
		MinInkCoverage: s.minInkCoverage,
		MaxWidthRatio:  s.maxWidthRatio,
	}, FilterNone, nil
}

// scoreItem runs inside a worker: width filter, joint normalization,
// ink filter, then similarity. All steps are synchronous and touch only
// the item's own buffers.
func (s *Scorer) scoreItem(item WorkItem) WorkResult {
	result := WorkResult{Idx: item.Idx}
	policy := filterPolicy{
		minInkCoverage: item.MinInkCoverage,
		maxWidthRatio:  item.MaxWidthRatio,
	}

	if reason := policy.checkWidths(InkWidth(item.BoundsA), InkWidth(item.BoundsB)); reason != FilterNone {
		result.FilterReason = reason
		return result
	}

	normA, normB, err := NormalizePair(item.PixelsA, item.PixelsB, item.BoundsA, item.BoundsB, item.CanonicalSize)
	if err != nil {
		if errors.Is(err, ErrEmptyInk) {
			result.FilterReason = FilterNoRender
			return result
		}
		result.Err = err
		return result
	}

	if reason := policy.checkCoverage(InkCoverage(normA.Raw), InkCoverage(normB.Raw)); reason != FilterNone {
		result.FilterReason = reason
		result.SkippedForInk = true
		return result
	}

	score, err := s.similarity(normA.Raw, normB.Raw)
	if err != nil {
		result.Err = err
		return result
	}

	result.Score = score
	result.Scored = true
	return result
}

// ScorePair is a convenience wrapper scoring one candidate pair in one
// font.
func (s *Scorer) ScorePair(pair ConfusablePair, font *FontInfo) (BatchResult, error) {
	rows, err := s.ScoreBatch([]BatchItem{{
		Source: pair.Source,
		Target: pair.Target,
		Fonts:  []*FontInfo{font},
	}})
	if err != nil {
		return BatchResult{}, err
	}
	return rows[0], nil
}

func fontFamily(font *FontInfo) string {
	if font == nil {
		return ""
	}
	return font.Family
}
