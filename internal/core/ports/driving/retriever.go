package driving

import (
	"context"

	"github.com/custodia-labs/ragcore/internal/core/domain"
)

// Retriever exposes the retrieval engine to driving adapters: ingest,
// nearest-neighbour query and delete, with cross-store consistency
// guaranteed by the implementation.
type Retriever interface {
	// AddDocument ingests content, embedding and indexing every chunk
	// before the id is returned. No partial state is observable to
	// callers: on failure the document is rolled back.
	AddDocument(ctx context.Context, content string, metadata map[string]any) (string, error)

	// GetDocument retrieves a document by id.
	// Returns domain.ErrNotFound when absent.
	GetDocument(ctx context.Context, id string) (domain.Document, error)

	// GetChunks returns a document's chunks in position order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// FindRelevantChunks returns the chunks closest to the query text,
	// ascending by distance, at most k of them. A k of 0 uses
	// domain.DefaultTopK; domain.NoDistanceLimit disables the
	// distance threshold.
	FindRelevantChunks(ctx context.Context, query string, k int, maxDistance float64) ([]domain.ChunkMatch, error)

	// DeleteDocument removes a document, its chunks, their index
	// entries and their cached embeddings. Reports whether the
	// document existed.
	DeleteDocument(ctx context.Context, id string) (bool, error)
}
