package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
	"github.com/custodia-labs/ragcore/internal/core/ports/driving"
	"github.com/custodia-labs/ragcore/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.Retriever = (*RetrievalService)(nil)

// RetrievalService composes the document store, the embedding cache and
// the vector index into ingest, query and delete operations. It is the
// only component that calls across all three, and it enforces the
// cross-store invariant: every chunk id of a live document has an index
// entry and vice versa. The invariant may be transiently broken only
// inside one in-flight write and is restored by compensation before
// that write returns.
type RetrievalService struct {
	// mu serializes writes against each other and against reads.
	// Coarse by choice: per-document locking would raise write
	// throughput but none of the driven contracts promise their own
	// thread safety.
	mu sync.RWMutex

	docs      driven.DocumentStore
	index     driven.VectorIndex
	embedder  *ChunkEmbedder
	chunkSize int
}

// Option configures the retrieval service.
type Option func(*RetrievalService)

// WithChunkSize overrides the document store's default chunk size for
// documents ingested through this service.
func WithChunkSize(size int) Option {
	return func(s *RetrievalService) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// NewRetrievalService creates a retrieval service from its three
// collaborators. All three are required.
func NewRetrievalService(
	docs driven.DocumentStore,
	index driven.VectorIndex,
	embedding driven.EmbeddingService,
	opts ...Option,
) (*RetrievalService, error) {
	if docs == nil {
		return nil, fmt.Errorf("document store is required: %w", domain.ErrInvalidInput)
	}
	if index == nil {
		return nil, fmt.Errorf("vector index is required: %w", domain.ErrInvalidInput)
	}
	if embedding == nil {
		return nil, fmt.Errorf("embedding service is required: %w", domain.ErrInvalidInput)
	}

	s := &RetrievalService{
		docs:     docs,
		index:    index,
		embedder: NewChunkEmbedder(embedding),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Embedder exposes the embedding cache, mainly so callers can inspect
// or clear it.
func (s *RetrievalService) Embedder() *ChunkEmbedder { return s.embedder }

// AddDocument ingests content as a saga: store the document and its
// chunks, embed every chunk, then index one vector per chunk id. A
// failure in a later step deletes the document created in the first, so
// no partial state is ever observable between calls.
//
// Embeddings computed before a vector-storage failure stay cached.
// That is accepted debris, not a consistency violation: a cache entry
// without a chunk is unreachable and a re-ingest of the same text gets
// fresh chunk ids anyway.
func (s *RetrievalService) AddDocument(ctx context.Context, content string, metadata map[string]any) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("document content is empty: %w", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Section("Ingest")

	var (
		docID   string
		chunks  []domain.Chunk
		vectors [][]float32
	)

	steps := []sagaStep{
		{
			stage: "document storage",
			run: func(ctx context.Context) error {
				id, err := s.docs.AddDocument(ctx, content, metadata, s.chunkSize)
				if err != nil {
					return err
				}
				docID = id
				chunks, err = s.docs.GetChunks(ctx, docID)
				if err != nil {
					return err
				}
				logger.Debug("Stored document %s with %d chunks", docID, len(chunks))
				return nil
			},
			compensate: func(ctx context.Context) error {
				_, err := s.docs.DeleteDocument(ctx, docID)
				return err
			},
		},
		{
			stage: "embedding",
			run: func(ctx context.Context) error {
				var err error
				vectors, err = s.embedder.EmbedBatch(ctx, chunks)
				return err
			},
		},
		{
			stage: "vector storage",
			run: func(ctx context.Context) error {
				ids := make([]string, len(chunks))
				for i, chunk := range chunks {
					ids[i] = chunk.ID()
				}
				return s.index.AddBatch(ctx, ids, vectors)
			},
		},
	}

	if err := runSaga(ctx, func() string { return docID }, steps); err != nil {
		return "", err
	}

	logger.Info("Ingested document %s (%d chunks)", docID, len(chunks))
	return docID, nil
}

// GetDocument retrieves a document by id.
func (s *RetrievalService) GetDocument(ctx context.Context, id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs.GetDocument(ctx, id)
}

// GetChunks returns a document's chunks in position order.
func (s *RetrievalService) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs.GetChunks(ctx, documentID)
}

// FindRelevantChunks embeds the query text and resolves the index's
// nearest neighbours back to chunks, closest first. Index hits that no
// longer resolve to a chunk are dropped silently: a stale id is the
// index's problem, not the caller's.
func (s *RetrievalService) FindRelevantChunks(ctx context.Context, query string, k int, maxDistance float64) ([]domain.ChunkMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 {
		k = domain.DefaultTopK
	}

	logger.Section("Query")
	logger.Debug("Query %q, k=%d, maxDistance=%v", query, k, maxDistance)

	// The query is embedded outside the cache: see EmbedQuery.
	queryVec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, &domain.StoreError{Stage: "query embedding", Err: err}
	}

	hits, err := s.index.Search(ctx, queryVec, k, maxDistance)
	if err != nil {
		return nil, &domain.StoreError{Stage: "similarity search", Err: err}
	}
	logger.Debug("Index returned %d hits", len(hits))

	matches := make([]domain.ChunkMatch, 0, len(hits))
	for _, hit := range hits {
		chunk, err := s.docs.GetChunk(ctx, hit.ChunkID)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Dropping stale index entry %s", hit.ChunkID)
			continue
		}
		if err != nil {
			return nil, &domain.StoreError{Stage: "chunk lookup", Err: err}
		}
		matches = append(matches, domain.ChunkMatch{Chunk: chunk, Distance: hit.Distance})
	}

	logger.Info("Query returned %d matches", len(matches))
	return matches, nil
}

// DeleteDocument removes a document and all of its derived state.
// Vectors are deleted before the document record: a failure or crash
// between the two leaves the index ahead of the store, which is safe to
// retry, never a dangling reference.
func (s *RetrievalService) DeleteDocument(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Section("Delete")

	chunks, err := s.docs.GetChunks(ctx, id)
	if err != nil {
		return false, &domain.StoreError{Stage: "chunk lookup", Err: err}
	}

	chunkIDs := make([]string, len(chunks))
	for i, chunk := range chunks {
		chunkIDs[i] = chunk.ID()
	}

	if len(chunkIDs) > 0 {
		if err := s.index.DeleteBatch(ctx, chunkIDs); err != nil {
			// Document left intact on purpose; see above.
			return false, &domain.StoreError{Stage: "vector deletion", Err: err}
		}
	}

	existed, err := s.docs.DeleteDocument(ctx, id)
	if err != nil {
		return false, &domain.StoreError{Stage: "document deletion", Err: err}
	}

	for _, chunkID := range chunkIDs {
		s.embedder.Evict(chunkID)
	}

	logger.Info("Deleted document %s (existed=%t, %d chunks)", id, existed, len(chunkIDs))
	return existed, nil
}
