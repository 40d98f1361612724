// Command ragcore is the retrieval engine CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/ragcore/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragcore/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/ragcore/internal/adapters/driven/embedding/openai"
	storemem "github.com/custodia-labs/ragcore/internal/adapters/driven/storage/memory"
	vecmem "github.com/custodia-labs/ragcore/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/ragcore/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/ragcore/internal/adapters/driving/cli"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
	"github.com/custodia-labs/ragcore/internal/core/services"
	"github.com/custodia-labs/ragcore/internal/logger"
)

// version is overridden at build time via
// -ldflags "-X main.version=v1.2.3".
var version = "dev"

func main() {
	if err := run(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run() error {
	// .env supplies API keys before config is read.
	_ = godotenv.Load()

	path := os.Getenv("RAGCORE_CONFIG")
	if path == "" {
		var err error
		path, err = file.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
	}
	cfg, err := file.Load(path)
	if err != nil {
		return err
	}

	retriever, closeAll, err := buildRetriever(cfg)
	if err != nil {
		return err
	}
	defer closeAll()

	cli.SetVersion(version)
	cli.SetRetriever(retriever)
	return cli.Execute()
}

// buildRetriever assembles the engine from configuration: embedding
// provider, vector index backend and the in-memory document store.
func buildRetriever(cfg file.Config) (*services.RetrievalService, func(), error) {
	embedding, err := buildEmbedding(cfg.Embedding)
	if err != nil {
		return nil, nil, err
	}

	index, err := buildIndex(cfg.Index, embedding.Dimensions())
	if err != nil {
		embedding.Close()
		return nil, nil, err
	}

	docs := storemem.NewDocumentStore(
		storemem.WithDefaultChunkSize(cfg.Engine.ChunkSize),
	)

	svc, err := services.NewRetrievalService(docs, index, embedding,
		services.WithChunkSize(cfg.Engine.ChunkSize))
	if err != nil {
		index.Close()
		embedding.Close()
		return nil, nil, err
	}

	closeAll := func() {
		if err := index.Close(); err != nil {
			logger.Warn("close index: %v", err)
		}
		if err := embedding.Close(); err != nil {
			logger.Warn("close embedding service: %v", err)
		}
	}
	return svc, closeAll, nil
}

func buildEmbedding(cfg file.EmbeddingConfig) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case file.ProviderOpenAI:
		return openai.NewEmbeddingService(openai.Config{
			APIKey:            os.Getenv("OPENAI_API_KEY"),
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Timeout:           cfg.Timeout(),
			Dimensions:        cfg.Dimensions,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
	case file.ProviderOllama:
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Timeout:    cfg.Timeout(),
			Dimensions: cfg.Dimensions,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

func buildIndex(cfg file.IndexConfig, dimension int) (driven.VectorIndex, error) {
	switch cfg.Backend {
	case file.IndexMemory:
		return vecmem.New(dimension)
	case file.IndexQdrant:
		return qdrant.New(cfg.Addr, cfg.Collection, dimension)
	default:
		return nil, fmt.Errorf("unknown index backend %q", cfg.Backend)
	}
}
