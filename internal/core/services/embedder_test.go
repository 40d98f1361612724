package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragcore/internal/core/domain"
)

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Vectors are looked up per text; unknown texts get the default vector.
type mockEmbeddingService struct {
	mu         sync.Mutex
	vectors    map[string][]float32
	defaultVec []float32
	embedErr   error
	batchErr   error
	embedCalls int
	batchCalls int
	batchTexts [][]string // texts received per EmbedBatch call
	shortBatch bool       // return one vector too few
}

func newMockEmbedding() *mockEmbeddingService {
	return &mockEmbeddingService{
		vectors:    make(map[string][]float32),
		defaultVec: []float32{0, 0, 0},
	}
}

func (m *mockEmbeddingService) vectorFor(text string) []float32 {
	if vec, ok := m.vectors[text]; ok {
		return vec
	}
	return m.defaultVec
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	m.batchTexts = append(m.batchTexts, append([]string(nil), texts...))
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		out = append(out, m.vectorFor(text))
	}
	if m.shortBatch && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int                 { return 3 }
func (m *mockEmbeddingService) ModelName() string               { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error    { return nil }
func (m *mockEmbeddingService) Close() error                    { return nil }

func chunk(id, text string) domain.Chunk {
	return domain.NewChunk(id, text, "doc-1", 0, nil)
}

func TestChunkEmbedder_Embed_CachesResult(t *testing.T) {
	svc := newMockEmbedding()
	svc.vectors["hello"] = []float32{1, 2, 3}
	embedder := NewChunkEmbedder(svc)
	ctx := context.Background()

	c := chunk("c1", "hello")

	first, err := embedder.Embed(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, first)

	second, err := embedder.Embed(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, 1, svc.embedCalls, "second call must be served from cache")
}

func TestChunkEmbedder_Embed_EmptyText(t *testing.T) {
	svc := newMockEmbedding()
	embedder := NewChunkEmbedder(svc)

	_, err := embedder.Embed(context.Background(), chunk("c1", "   \t"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, svc.embedCalls)

	// An empty chunk never reaches the cache.
	_, cached := embedder.Cached("c1")
	assert.False(t, cached)
}

func TestChunkEmbedder_Embed_UpstreamError(t *testing.T) {
	svc := newMockEmbedding()
	svc.embedErr = errors.New("boom")
	embedder := NewChunkEmbedder(svc)

	_, err := embedder.Embed(context.Background(), chunk("c1", "hello"))
	require.Error(t, err)

	_, cached := embedder.Cached("c1")
	assert.False(t, cached, "failed embeddings must not be cached")
}

func TestChunkEmbedder_EmbedBatch_EmptyInput(t *testing.T) {
	svc := newMockEmbedding()
	embedder := NewChunkEmbedder(svc)

	out, err := embedder.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 0, svc.batchCalls, "empty input must not invoke the capability")
}

func TestChunkEmbedder_EmbedBatch_OnlyUncachedSentUpstream(t *testing.T) {
	svc := newMockEmbedding()
	svc.vectors["one"] = []float32{1, 0, 0}
	svc.vectors["two"] = []float32{2, 0, 0}
	svc.vectors["three"] = []float32{3, 0, 0}
	embedder := NewChunkEmbedder(svc)
	ctx := context.Background()

	// Pre-warm the cache with the middle chunk.
	_, err := embedder.Embed(ctx, chunk("c2", "two"))
	require.NoError(t, err)

	chunks := []domain.Chunk{
		chunk("c1", "one"),
		chunk("c2", "two"),
		chunk("c3", "three"),
	}
	out, err := embedder.EmbedBatch(ctx, chunks)
	require.NoError(t, err)

	// Output is in input order with the cached entry interleaved.
	require.Len(t, out, 3)
	assert.Equal(t, []float32{1, 0, 0}, out[0])
	assert.Equal(t, []float32{2, 0, 0}, out[1])
	assert.Equal(t, []float32{3, 0, 0}, out[2])

	// Exactly one upstream batch call, containing only the two
	// uncached texts in their relative order.
	require.Equal(t, 1, svc.batchCalls)
	assert.Equal(t, []string{"one", "three"}, svc.batchTexts[0])
}

func TestChunkEmbedder_EmbedBatch_AllCached(t *testing.T) {
	svc := newMockEmbedding()
	embedder := NewChunkEmbedder(svc)
	ctx := context.Background()

	chunks := []domain.Chunk{chunk("c1", "one"), chunk("c2", "two")}
	_, err := embedder.EmbedBatch(ctx, chunks)
	require.NoError(t, err)
	require.Equal(t, 1, svc.batchCalls)

	_, err = embedder.EmbedBatch(ctx, chunks)
	require.NoError(t, err)
	assert.Equal(t, 1, svc.batchCalls, "fully cached batch must not call upstream")
}

func TestChunkEmbedder_EmbedBatch_EmptyTextFailsFast(t *testing.T) {
	svc := newMockEmbedding()
	embedder := NewChunkEmbedder(svc)

	chunks := []domain.Chunk{chunk("c1", "fine"), chunk("c2", " ")}
	_, err := embedder.EmbedBatch(context.Background(), chunks)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, svc.batchCalls, "validation failures must have no side effects")
}

func TestChunkEmbedder_EmbedBatch_ShortUpstreamResponse(t *testing.T) {
	svc := newMockEmbedding()
	svc.shortBatch = true
	embedder := NewChunkEmbedder(svc)

	_, err := embedder.EmbedBatch(context.Background(), []domain.Chunk{
		chunk("c1", "one"),
		chunk("c2", "two"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned 1 vectors for 2 texts")
}

func TestChunkEmbedder_EmbedQuery_DoesNotCache(t *testing.T) {
	svc := newMockEmbedding()
	svc.vectors["what is up"] = []float32{4, 0, 0}
	embedder := NewChunkEmbedder(svc)
	ctx := context.Background()

	vec, err := embedder.EmbedQuery(ctx, "what is up")
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 0, 0}, vec)
	assert.Equal(t, 0, embedder.Len(), "query embeddings must not pollute the cache")

	_, err = embedder.EmbedQuery(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChunkEmbedder_CachedEvictClear(t *testing.T) {
	svc := newMockEmbedding()
	svc.vectors["hello"] = []float32{1, 1, 1}
	embedder := NewChunkEmbedder(svc)
	ctx := context.Background()

	_, err := embedder.Embed(ctx, chunk("c1", "hello"))
	require.NoError(t, err)

	vec, ok := embedder.Cached("c1")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 1, 1}, vec)
	assert.Equal(t, 1, embedder.Len())
	assert.Equal(t, 1, svc.embedCalls, "Cached never calls the capability")

	embedder.Evict("c1")
	_, ok = embedder.Cached("c1")
	assert.False(t, ok)

	_, err = embedder.Embed(ctx, chunk("c1", "hello"))
	require.NoError(t, err)
	embedder.Clear()
	assert.Equal(t, 0, embedder.Len())
}

func TestChunkEmbedder_ConcurrentEmbed(t *testing.T) {
	svc := newMockEmbedding()
	embedder := NewChunkEmbedder(svc)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := embedder.Embed(ctx, chunk("shared", "same text"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// The check-then-insert race allows redundant upstream calls but
	// never a missing or corrupted entry.
	_, ok := embedder.Cached("shared")
	assert.True(t, ok)
	assert.Equal(t, 1, embedder.Len())
}
