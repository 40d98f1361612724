// Package file loads engine configuration from a TOML file.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/ragcore/internal/core/domain"
)

// Provider names accepted in the embedding section.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Index backend names accepted in the index section.
const (
	IndexMemory = "memory"
	IndexQdrant = "qdrant"
)

// Config is the engine configuration, read from config.toml.
type Config struct {
	Engine    EngineConfig    `toml:"engine"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Index     IndexConfig     `toml:"index"`
}

// EngineConfig holds orchestrator-level settings.
type EngineConfig struct {
	// ChunkSize is the soft character cap per chunk.
	ChunkSize int `toml:"chunk_size"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "openai" or "ollama".
	Provider string `toml:"provider"`

	// Model overrides the provider's default model.
	Model string `toml:"model"`

	// Dimensions overrides the model's default vector size.
	Dimensions int `toml:"dimensions"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `toml:"base_url"`

	// TimeoutSeconds is the request timeout (default: provider's own).
	TimeoutSeconds int `toml:"timeout_seconds"`

	// RequestsPerSecond throttles OpenAI calls; ignored for Ollama.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// IndexConfig selects and configures the vector index backend.
type IndexConfig struct {
	// Backend is "memory" or "qdrant".
	Backend string `toml:"backend"`

	// Addr is the Qdrant gRPC address (host:port).
	Addr string `toml:"addr"`

	// Collection is the Qdrant collection name.
	Collection string `toml:"collection"`
}

// Default returns the built-in configuration: in-memory index and
// Ollama embeddings, usable with no config file at all.
func Default() Config {
	return Config{
		Engine:    EngineConfig{ChunkSize: 500},
		Embedding: EmbeddingConfig{Provider: ProviderOllama},
		Index:     IndexConfig{Backend: IndexMemory, Collection: "ragcore"},
	}
}

// DefaultPath returns the standard config file location,
// ~/.ragcore/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ragcore", "config.toml"), nil
}

// Load reads configuration from path, filling unset fields with
// defaults. A missing file yields the defaults without error; a
// malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for contradictions.
func (c Config) Validate() error {
	if c.Engine.ChunkSize <= 0 {
		return fmt.Errorf("engine.chunk_size must be positive, got %d: %w",
			c.Engine.ChunkSize, domain.ErrInvalidInput)
	}
	switch c.Embedding.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("embedding.provider must be %q or %q, got %q: %w",
			ProviderOpenAI, ProviderOllama, c.Embedding.Provider, domain.ErrInvalidInput)
	}
	switch c.Index.Backend {
	case IndexMemory:
	case IndexQdrant:
		if c.Index.Addr == "" {
			return fmt.Errorf("index.addr is required for the qdrant backend: %w", domain.ErrInvalidInput)
		}
		if c.Index.Collection == "" {
			return fmt.Errorf("index.collection is required for the qdrant backend: %w", domain.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("index.backend must be %q or %q, got %q: %w",
			IndexMemory, IndexQdrant, c.Index.Backend, domain.ErrInvalidInput)
	}
	return nil
}

// Timeout returns the configured embedding request timeout, or zero to
// let the provider apply its own default.
func (e EmbeddingConfig) Timeout() time.Duration {
	if e.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(e.TimeoutSeconds) * time.Second
}
