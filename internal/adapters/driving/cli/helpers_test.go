package cli

import (
	"context"
	"hash/fnv"

	storemem "github.com/custodia-labs/ragcore/internal/adapters/driven/storage/memory"
	vecmem "github.com/custodia-labs/ragcore/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/ragcore/internal/core/services"
)

// hashEmbedding is a deterministic embedding service for tests: the
// vector is derived from a hash of the text, so equal texts embed
// equally and different texts (almost always) differ.
type hashEmbedding struct{}

func (hashEmbedding) Embed(_ context.Context, text string) ([]float32, error) {
	h := fnv.New32a()
	h.Write([]byte(text))
	sum := h.Sum32()
	return []float32{
		float32(sum%997) / 997,
		float32(sum%991) / 991,
		float32(sum%983) / 983,
	}, nil
}

func (e hashEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (hashEmbedding) Dimensions() int              { return 3 }
func (hashEmbedding) ModelName() string            { return "hash-test" }
func (hashEmbedding) Ping(_ context.Context) error { return nil }
func (hashEmbedding) Close() error                 { return nil }

// setupTestServices wires a real in-memory engine behind the commands
// and returns a cleanup func restoring the previous state.
func setupTestServices() func() {
	docs := storemem.NewDocumentStore()
	idx, err := vecmem.New(3)
	if err != nil {
		panic(err)
	}
	svc, err := services.NewRetrievalService(docs, idx, hashEmbedding{})
	if err != nil {
		panic(err)
	}

	previous := retriever
	retriever = svc
	return func() {
		retriever = previous
	}
}
