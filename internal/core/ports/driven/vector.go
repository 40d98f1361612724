package driven

import "context"

// VectorIndex stores fixed-dimension vectors by id and answers
// k-nearest-neighbour queries by distance.
//
// Implementations that delete by rebuilding a flat index make delete
// and search mutually exclusive; unless an implementation documents its
// own internal locking, callers must serialize access externally.
type VectorIndex interface {
	// Add stores a vector under an id. Fails with
	// domain.ErrAlreadyExists when the id is present and
	// domain.ErrInvalidInput on a dimension mismatch.
	Add(ctx context.Context, id string, vector []float32) error

	// AddBatch stores multiple vectors with the same checks applied to
	// the whole batch: any single duplicate or mismatch fails the call
	// without storing anything.
	AddBatch(ctx context.Context, ids []string, vectors [][]float32) error

	// Get retrieves a stored vector by id.
	// Returns domain.ErrNotFound when absent.
	Get(ctx context.Context, id string) ([]float32, error)

	// Search returns up to k hits ordered by ascending distance.
	// When maxDistance is non-negative, hits past the threshold are
	// excluded and fewer than k results may legitimately be returned;
	// domain.NoDistanceLimit disables the filter.
	Search(ctx context.Context, query []float32, k int, maxDistance float64) ([]VectorHit, error)

	// Delete removes a vector, reporting whether it existed.
	Delete(ctx context.Context, id string) (bool, error)

	// DeleteBatch removes multiple vectors, silently ignoring ids that
	// are not present.
	DeleteBatch(ctx context.Context, ids []string) error

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the id the matched vector was stored under.
	ChunkID string

	// Distance to the query vector; smaller is closer.
	Distance float64
}
