package glyphsim

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/wbrown/glyphsim/imageutil"
)

// WorkItem is one self-contained scoring unit: the two already-decoded
// raster buffers for a (pair, font) combination, their precomputed ink
// bounds, and the thresholds in force. Decoding happens once, before
// dispatch, so workers share no mutable state and need no locks.
// Immutable once created.
type WorkItem struct {
	Idx            int
	PixelsA        *imageutil.GrayImage
	PixelsB        *imageutil.GrayImage
	BoundsA        InkBounds
	BoundsB        InkBounds
	CanonicalSize  int
	MinInkCoverage float64
	MaxWidthRatio  float64
}

// WorkResult is the unit of return from the pool. Idx always echoes the
// originating WorkItem.Idx so submission order can be restored
// irrespective of completion order.
type WorkResult struct {
	Idx           int
	Score         float64
	Scored        bool
	SkippedForInk bool
	FilterReason  FilterReason
	Err           error
}

// workerPool distributes independent work items across a fixed, bounded
// number of goroutines. Items are consumed from a single task queue;
// results come back in completion order and carry their Idx for
// reassembly.
type workerPool struct {
	workers int
}

func newWorkerPool(workers int) workerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return workerPool{workers: workers}
}

// run processes every item with fn and returns all results in
// completion order. It blocks until the whole batch has completed.
// fn failures are expected to be encoded in the returned WorkResult;
// one item's failure never aborts its siblings.
func (p workerPool) run(items []WorkItem, fn func(WorkItem) WorkResult) []WorkResult {
	if len(items) == 0 {
		return nil
	}

	workers := p.workers
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan WorkItem, len(items))
	results := make(chan WorkResult, len(items))

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for item := range jobs {
				results <- fn(item)
			}
		}()
	}

	for _, item := range items {
		jobs <- item
	}
	close(jobs)

	wg.Wait()
	close(results)

	out := make([]WorkResult, 0, len(items))
	for r := range results {
		out = append(out, r)
	}
	return out
}

// reassemble maps completion-ordered results back onto the submitted
// items by Idx and verifies the permutation: every submitted Idx must
// come back exactly once. A missing or duplicated Idx is an ErrIntegrity
// coordinator failure, never silently dropped.
func reassemble(items []WorkItem, results []WorkResult) (map[int]WorkResult, error) {
	byIdx := make(map[int]WorkResult, len(results))
	for _, r := range results {
		if _, dup := byIdx[r.Idx]; dup {
			return nil, fmt.Errorf("%w: duplicate idx %d", ErrIntegrity, r.Idx)
		}
		byIdx[r.Idx] = r
	}
	for _, item := range items {
		if _, ok := byIdx[item.Idx]; !ok {
			return nil, fmt.Errorf("%w: missing idx %d", ErrIntegrity, item.Idx)
		}
	}
	if len(byIdx) != len(items) {
		return nil, fmt.Errorf("%w: %d results for %d items", ErrIntegrity, len(byIdx), len(items))
	}
	return byIdx, nil
}
