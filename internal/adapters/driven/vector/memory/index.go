// Package memory provides a flat in-memory vector index with exact
// (brute-force) nearest-neighbour search by squared L2 distance.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index stores vectors in insertion order alongside an id -> slot map.
// All operations take the internal lock, so the index is safe to share
// without external serialization.
type Index struct {
	mu        sync.RWMutex
	dimension int
	ids       []string
	vectors   [][]float32
	slots     map[string]int
}

// New creates an index for vectors of the given dimension.
func New(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("dimension must be positive: %w", domain.ErrInvalidInput)
	}
	return &Index{
		dimension: dimension,
		slots:     make(map[string]int),
	}, nil
}

// Dimension returns the vector size this index accepts.
func (x *Index) Dimension() int { return x.dimension }

// Len reports how many vectors are stored.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.ids)
}

// Add stores a vector under an id.
func (x *Index) Add(_ context.Context, id string, vector []float32) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.check(id, vector, nil); err != nil {
		return err
	}
	x.insert(id, vector)
	return nil
}

// AddBatch stores multiple vectors. All checks run before anything is
// stored, so a failing batch leaves the index untouched.
func (x *Index) AddBatch(_ context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("%d ids for %d vectors: %w", len(ids), len(vectors), domain.ErrInvalidInput)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	seen := make(map[string]bool, len(ids))
	for i, id := range ids {
		if err := x.check(id, vectors[i], seen); err != nil {
			return err
		}
		seen[id] = true
	}
	for i, id := range ids {
		x.insert(id, vectors[i])
	}
	return nil
}

// check validates one (id, vector) pair against the index and against
// earlier entries of the same batch. Caller holds the lock.
func (x *Index) check(id string, vector []float32, batch map[string]bool) error {
	if _, dup := x.slots[id]; dup || batch[id] {
		return fmt.Errorf("vector %q: %w", id, domain.ErrAlreadyExists)
	}
	if len(vector) != x.dimension {
		return fmt.Errorf("vector %q has dimension %d, index expects %d: %w",
			id, len(vector), x.dimension, domain.ErrInvalidInput)
	}
	return nil
}

func (x *Index) insert(id string, vector []float32) {
	x.slots[id] = len(x.ids)
	x.ids = append(x.ids, id)
	x.vectors = append(x.vectors, vector)
}

// Get retrieves a copy of a stored vector.
func (x *Index) Get(_ context.Context, id string) ([]float32, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	slot, ok := x.slots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]float32, x.dimension)
	copy(out, x.vectors[slot])
	return out, nil
}

// Search scans every stored vector and returns the k nearest by
// squared L2 distance, ascending. Hits beyond maxDistance are excluded
// when the threshold is non-negative.
func (x *Index) Search(_ context.Context, query []float32, k int, maxDistance float64) ([]driven.VectorHit, error) {
	if len(query) != x.dimension {
		return nil, fmt.Errorf("query has dimension %d, index expects %d: %w",
			len(query), x.dimension, domain.ErrInvalidInput)
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive: %w", domain.ErrInvalidInput)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(x.ids))
	for i, id := range x.ids {
		hits = append(hits, driven.VectorHit{
			ChunkID:  id,
			Distance: squaredL2(query, x.vectors[i]),
		})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })

	if k < len(hits) {
		hits = hits[:k]
	}
	if maxDistance >= 0 {
		cut := len(hits)
		for i, hit := range hits {
			if hit.Distance > maxDistance {
				cut = i
				break
			}
		}
		hits = hits[:cut]
	}
	return hits, nil
}

// Delete removes a vector with a swap-remove; insertion order is not
// part of the contract.
func (x *Index) Delete(_ context.Context, id string) (bool, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.remove(id), nil
}

// DeleteBatch removes multiple vectors, silently ignoring missing ids.
func (x *Index) DeleteBatch(_ context.Context, ids []string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, id := range ids {
		x.remove(id)
	}
	return nil
}

// remove deletes one id. Caller holds the lock.
func (x *Index) remove(id string) bool {
	slot, ok := x.slots[id]
	if !ok {
		return false
	}
	last := len(x.ids) - 1
	if slot != last {
		x.ids[slot] = x.ids[last]
		x.vectors[slot] = x.vectors[last]
		x.slots[x.ids[slot]] = slot
	}
	x.ids = x.ids[:last]
	x.vectors = x.vectors[:last]
	delete(x.slots, id)
	return true
}

// Close releases resources. The in-memory index has none.
func (x *Index) Close() error { return nil }

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
