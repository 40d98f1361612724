package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
	"github.com/custodia-labs/ragcore/internal/logger"
)

// ChunkEmbedder memoizes per-chunk embeddings and batch-minimizes calls
// to the embedding capability. The cache is keyed by chunk id and holds
// at most one embedding per id. It never stores an entry for a chunk
// whose text is empty; such chunks fail before reaching the cache.
type ChunkEmbedder struct {
	service driven.EmbeddingService

	mu    sync.Mutex
	cache map[string][]float32
}

// NewChunkEmbedder creates an embedder backed by the given service.
func NewChunkEmbedder(service driven.EmbeddingService) *ChunkEmbedder {
	return &ChunkEmbedder{
		service: service,
		cache:   make(map[string][]float32),
	}
}

// Embed returns the embedding for a single chunk, generating and
// caching it on first use.
//
// The capability call happens outside the lock, so two callers racing
// on the same uncached id may both call upstream; the second write wins
// with an identical vector. At most one redundant call, never a
// corrupted entry.
func (e *ChunkEmbedder) Embed(ctx context.Context, chunk domain.Chunk) ([]float32, error) {
	if strings.TrimSpace(chunk.Text()) == "" {
		return nil, fmt.Errorf("chunk %s has empty text: %w", chunk.ID(), domain.ErrInvalidInput)
	}

	e.mu.Lock()
	if vec, ok := e.cache[chunk.ID()]; ok {
		e.mu.Unlock()
		return vec, nil
	}
	e.mu.Unlock()

	vec, err := e.service.Embed(ctx, chunk.Text())
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[chunk.ID()] = vec
	e.mu.Unlock()
	return vec, nil
}

// EmbedBatch returns embeddings for all chunks in input order. Only the
// not-yet-cached chunks are sent upstream, in one batch call preserving
// their relative order. An empty input returns an empty slice without
// invoking the capability.
func (e *ChunkEmbedder) EmbedBatch(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	if len(chunks) == 0 {
		return [][]float32{}, nil
	}

	for _, chunk := range chunks {
		if strings.TrimSpace(chunk.Text()) == "" {
			return nil, fmt.Errorf("chunk %s has empty text: %w", chunk.ID(), domain.ErrInvalidInput)
		}
	}

	e.mu.Lock()
	var missing []domain.Chunk
	for _, chunk := range chunks {
		if _, ok := e.cache[chunk.ID()]; !ok {
			missing = append(missing, chunk)
		}
	}
	e.mu.Unlock()

	if len(missing) > 0 {
		texts := make([]string, len(missing))
		for i, chunk := range missing {
			texts[i] = chunk.Text()
		}

		logger.Debug("Embedding %d of %d chunks (%d cached)", len(missing), len(chunks), len(chunks)-len(missing))
		vectors, err := e.service.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(missing) {
			return nil, fmt.Errorf("embedding service returned %d vectors for %d texts", len(vectors), len(missing))
		}

		e.mu.Lock()
		for i, chunk := range missing {
			e.cache[chunk.ID()] = vectors[i]
		}
		e.mu.Unlock()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		vec, ok := e.cache[chunk.ID()]
		if !ok {
			// A concurrent Clear between the merge and this read.
			return nil, fmt.Errorf("embedding for chunk %s evicted mid-batch", chunk.ID())
		}
		out[i] = vec
	}
	return out, nil
}

// EmbedQuery embeds text without touching the cache. Query text is
// ephemeral: caching it would grow the cache unboundedly per query, and
// an entry stored under a synthetic id could shadow a future real chunk.
func (e *ChunkEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("query text is empty: %w", domain.ErrInvalidInput)
	}
	return e.service.Embed(ctx, text)
}

// Cached returns the cached embedding for a chunk id, if present.
// It never calls the embedding capability.
func (e *ChunkEmbedder) Cached(chunkID string) ([]float32, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	vec, ok := e.cache[chunkID]
	return vec, ok
}

// Evict drops the cached embedding for a chunk id, if present.
func (e *ChunkEmbedder) Evict(chunkID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.cache, chunkID)
}

// Clear drops all cached entries. The document store and vector index
// are unaffected.
func (e *ChunkEmbedder) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string][]float32)
}

// Len reports how many embeddings are cached.
func (e *ChunkEmbedder) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cache)
}
