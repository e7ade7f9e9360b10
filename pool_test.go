package glyphsim

import (
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"
)

func makeItems(n int) []WorkItem {
	items := make([]WorkItem, n)
	for i := range items {
		items[i] = WorkItem{Idx: i}
	}
	return items
}

func TestPoolProcessesEveryItem(t *testing.T) {
	t.Parallel()

	pool := newWorkerPool(4)
	items := makeItems(100)

	var processed atomic.Int64
	results := pool.run(items, func(item WorkItem) WorkResult {
		processed.Add(1)
		return WorkResult{Idx: item.Idx, Score: float64(item.Idx), Scored: true}
	})

	if processed.Load() != 100 {
		t.Errorf("Expected 100 items processed, got %d", processed.Load())
	}
	if len(results) != 100 {
		t.Errorf("Expected 100 results, got %d", len(results))
	}
}

// TestPoolOrderRestoration is the ordering contract: whatever order
// workers complete in, reassembly by idx restores submission order.
func TestPoolOrderRestoration(t *testing.T) {
	t.Parallel()

	pool := newWorkerPool(8)
	items := makeItems(200)

	// Jittered completion forces heavy interleaving
	rng := rand.New(rand.NewSource(42))
	delays := make([]time.Duration, len(items))
	for i := range delays {
		delays[i] = time.Duration(rng.Intn(3)) * time.Millisecond
	}

	results := pool.run(items, func(item WorkItem) WorkResult {
		time.Sleep(delays[item.Idx])
		return WorkResult{Idx: item.Idx, Score: float64(item.Idx) / 1000, Scored: true}
	})

	byIdx, err := reassemble(items, results)
	if err != nil {
		t.Fatalf("reassemble failed: %v", err)
	}
	for _, item := range items {
		r := byIdx[item.Idx]
		if r.Idx != item.Idx {
			t.Fatalf("Result idx %d mapped to item %d", r.Idx, item.Idx)
		}
		if r.Score != float64(item.Idx)/1000 {
			t.Fatalf("Item %d got score %f from another item", item.Idx, r.Score)
		}
	}
}

// TestPoolFailureIsolation checks that one failing item does not abort
// or poison its siblings.
func TestPoolFailureIsolation(t *testing.T) {
	t.Parallel()

	pool := newWorkerPool(4)
	items := makeItems(50)

	results := pool.run(items, func(item WorkItem) WorkResult {
		if item.Idx == 25 {
			return WorkResult{Idx: item.Idx, Err: fmt.Errorf("decode exploded")}
		}
		return WorkResult{Idx: item.Idx, Scored: true}
	})

	byIdx, err := reassemble(items, results)
	if err != nil {
		t.Fatalf("reassemble failed: %v", err)
	}
	for idx, r := range byIdx {
		if idx == 25 {
			if r.Err == nil || r.Scored {
				t.Error("Failed item should carry its error and no score")
			}
			continue
		}
		if r.Err != nil || !r.Scored {
			t.Errorf("Sibling %d affected by failure: %+v", idx, r)
		}
	}
}

func TestReassembleDetectsDuplicates(t *testing.T) {
	t.Parallel()

	items := makeItems(3)
	results := []WorkResult{{Idx: 0}, {Idx: 1}, {Idx: 1}}

	if _, err := reassemble(items, results); !errors.Is(err, ErrIntegrity) {
		t.Errorf("Expected ErrIntegrity for duplicate idx, got %v", err)
	}
}

func TestReassembleDetectsMissing(t *testing.T) {
	t.Parallel()

	items := makeItems(3)
	results := []WorkResult{{Idx: 0}, {Idx: 2}}

	if _, err := reassemble(items, results); !errors.Is(err, ErrIntegrity) {
		t.Errorf("Expected ErrIntegrity for missing idx, got %v", err)
	}
}

// TestReassembleShuffledCompletion simulates arbitrary completion
// orderings directly: any permutation of results must reassemble to the
// same mapping.
func TestReassembleShuffledCompletion(t *testing.T) {
	t.Parallel()

	items := makeItems(64)
	results := make([]WorkResult, len(items))
	for i := range results {
		results[i] = WorkResult{Idx: i, Score: float64(i), Scored: true}
	}

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 25; trial++ {
		rng.Shuffle(len(results), func(i, j int) {
			results[i], results[j] = results[j], results[i]
		})
		byIdx, err := reassemble(items, results)
		if err != nil {
			t.Fatalf("Trial %d: reassemble failed: %v", trial, err)
		}
		for i := 0; i < len(items); i++ {
			if byIdx[i].Score != float64(i) {
				t.Fatalf("Trial %d: idx %d mapped to score %f", trial, i, byIdx[i].Score)
			}
		}
	}
}

func TestPoolBoundedWorkers(t *testing.T) {
	t.Parallel()

	pool := newWorkerPool(2)
	items := makeItems(40)

	var inFlight, peak atomic.Int64
	results := pool.run(items, func(item WorkItem) WorkResult {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		inFlight.Add(-1)
		return WorkResult{Idx: item.Idx}
	})

	if len(results) != 40 {
		t.Fatalf("Expected 40 results, got %d", len(results))
	}
	if peak.Load() > 2 {
		t.Errorf("Worker bound violated: %d concurrent items", peak.Load())
	}
}

func TestPoolEmptyBatch(t *testing.T) {
	t.Parallel()

	pool := newWorkerPool(4)
	if results := pool.run(nil, func(item WorkItem) WorkResult {
		return WorkResult{Idx: item.Idx}
	}); results != nil {
		t.Errorf("Empty batch should yield no results, got %d", len(results))
	}
}
