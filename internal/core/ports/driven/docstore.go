package driven

import (
	"context"

	"github.com/custodia-labs/ragcore/internal/core/domain"
)

// DocumentStore persists documents and their derived chunks.
// A document and its chunk set are created atomically in one
// AddDocument call; the chunk set is then fixed for the document's
// lifetime.
//
// The store knows nothing about embeddings or vectors. Cleaning up a
// deleted document's index entries and cache entries is the retrieval
// service's responsibility.
type DocumentStore interface {
	// AddDocument splits content into chunks and persists the document
	// together with all of its chunks before returning the fresh
	// document id. A chunkSize of 0 uses the store-wide default.
	// Empty content fails with domain.ErrInvalidInput.
	AddDocument(ctx context.Context, content string, metadata map[string]any, chunkSize int) (string, error)

	// GetDocument retrieves a document by id.
	// Returns domain.ErrNotFound when absent.
	GetDocument(ctx context.Context, id string) (domain.Document, error)

	// GetChunks returns the document's chunks in position order.
	// An absent document yields an empty slice, not an error.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a specific chunk by id.
	// Returns domain.ErrNotFound when absent.
	GetChunk(ctx context.Context, id string) (domain.Chunk, error)

	// DeleteDocument removes the document and every chunk referencing
	// it. Reports whether the document existed.
	DeleteDocument(ctx context.Context, id string) (bool, error)
}
