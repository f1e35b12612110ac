package knowledge

import (
	"context"
	"fmt"
)

// Provider enumerates supported vector store backends.
type Provider string

const (
	ProviderWeaviate Provider = "weaviate"
	ProviderRedis    Provider = "redis"
	// ProviderMemory keeps embeddings in process memory; used for tests
	// and local development.
	ProviderMemory Provider = "memory"
)

// Match captures a similarity search result.
type Match struct {
	ID       string
	Score    float64
	Text     string
	Metadata map[string]any
}

// SearchOptions controls similarity search execution.
type SearchOptions struct {
	TopK     int
	MinScore float64
}

// Store exposes the read path of a named-collection vector store. The
// pipeline never ingests or indexes; it only searches.
type Store interface {
	// Search returns matches from the named collection ranked by
	// similarity to the query vector.
	Search(ctx context.Context, collection string, query []float32, opts SearchOptions) ([]Match, error)
	// Collections lists the collections known to the backend.
	Collections(ctx context.Context) ([]string, error)
	// Close releases the underlying client.
	Close(ctx context.Context) error
}

// StoreConfig captures normalized connection details for a vector store.
type StoreConfig struct {
	Provider Provider
	// Endpoint is the base URL (weaviate) or address (redis).
	Endpoint string
	APIKey   string
	// Dimension of stored vectors; required by the redis backend.
	Dimension int
}

// NewStore builds a store for the configured backend.
func NewStore(cfg *StoreConfig) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("knowledge: store config is required")
	}
	switch cfg.Provider {
	case ProviderWeaviate:
		return newWeaviateStore(cfg)
	case ProviderRedis:
		return newRedisStore(cfg)
	case ProviderMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("knowledge: unsupported store provider: %s", cfg.Provider)
	}
}
