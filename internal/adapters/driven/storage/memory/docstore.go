// Package memory provides an in-memory implementation of the document
// store. State does not survive the process; persistence is out of
// scope for this engine.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
	"github.com/custodia-labs/ragcore/internal/splitter"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DefaultChunkSize is the chunk size used when a caller passes 0.
const DefaultChunkSize = 500

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Chunking happens inside AddDocument so a stored document always has
// its full chunk set.
type DocumentStore struct {
	mu               sync.RWMutex
	defaultChunkSize int
	documents        map[string]domain.Document
	chunks           map[string][]domain.Chunk // keyed by document id, position order
}

// Option configures the document store.
type Option func(*DocumentStore)

// WithDefaultChunkSize sets the store-wide default chunk size.
func WithDefaultChunkSize(size int) Option {
	return func(s *DocumentStore) {
		if size > 0 {
			s.defaultChunkSize = size
		}
	}
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore(opts ...Option) *DocumentStore {
	s := &DocumentStore{
		defaultChunkSize: DefaultChunkSize,
		documents:        make(map[string]domain.Document),
		chunks:           make(map[string][]domain.Chunk),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddDocument splits content into chunks and persists the document
// together with all of its chunks before returning.
func (s *DocumentStore) AddDocument(_ context.Context, content string, metadata map[string]any, chunkSize int) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("document content is empty: %w", domain.ErrInvalidInput)
	}
	if chunkSize <= 0 {
		chunkSize = s.defaultChunkSize
	}

	docID := uuid.New().String()
	doc := domain.NewDocument(docID, content, metadata)

	texts := splitter.Split(content, chunkSize)
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.NewChunk(uuid.New().String(), text, docID, i, nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[docID] = doc
	s.chunks[docID] = chunks
	return docID, nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return domain.Document{}, domain.ErrNotFound
	}
	return doc, nil
}

// GetChunks returns the document's chunks in position order.
// An absent document yields an empty slice.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks, ok := s.chunks[documentID]
	if !ok {
		return nil, nil
	}
	out := make([]domain.Chunk, len(chunks))
	copy(out, chunks)
	return out, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *DocumentStore) GetChunk(_ context.Context, id string) (domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, chunks := range s.chunks {
		for _, chunk := range chunks {
			if chunk.ID() == id {
				return chunk, nil
			}
		}
	}
	return domain.Chunk{}, domain.ErrNotFound
}

// Len reports the number of stored documents.
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// DeleteDocument removes a document and every chunk referencing it.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return false, nil
	}
	delete(s.documents, id)
	delete(s.chunks, id)
	return true, nil
}
