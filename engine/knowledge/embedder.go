package knowledge

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/amlstack/advisor/engine/core"
)

// Embedder turns a query string into a vector for similarity search.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// EmbedderConfig selects the embedding backend.
type EmbedderConfig struct {
	Provider core.ProviderName
	Model    string
	APIKey   string
	// CacheSize bounds the query embedding cache; 0 uses the default.
	CacheSize int
}

const defaultEmbedCacheSize = 512

// langchainEmbedder wraps a langchaingo embedder with a query cache.
// Repeated specialist searches for the same query skip the network call.
type langchainEmbedder struct {
	embedder embeddings.Embedder
	cache    *lru.Cache[string, []float32]
}

// NewEmbedder builds an embedder for the configured provider.
func NewEmbedder(cfg *EmbedderConfig) (Embedder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("knowledge: embedder config is required")
	}
	client, err := createEmbedderClient(cfg)
	if err != nil {
		return nil, err
	}
	emb, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("knowledge: create embedder: %w", err)
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = defaultEmbedCacheSize
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("knowledge: create embedding cache: %w", err)
	}
	return &langchainEmbedder{embedder: emb, cache: cache}, nil
}

func createEmbedderClient(cfg *EmbedderConfig) (embeddings.EmbedderClient, error) {
	switch cfg.Provider {
	case core.ProviderOpenAI:
		opts := []openai.Option{openai.WithEmbeddingModel(cfg.Model)}
		if cfg.APIKey != "" {
			opts = append(opts, openai.WithToken(cfg.APIKey))
		}
		return openai.New(opts...)
	case core.ProviderGoogle:
		opts := []googleai.Option{googleai.WithDefaultEmbeddingModel(cfg.Model)}
		if cfg.APIKey != "" {
			opts = append(opts, googleai.WithAPIKey(cfg.APIKey))
		}
		return googleai.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("knowledge: unsupported embedder provider: %s", cfg.Provider)
	}
}

func (e *langchainEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	vector, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("knowledge: embed query: %w", err)
	}
	e.cache.Add(text, vector)
	return vector, nil
}

// HashEmbedder produces deterministic vectors from token hashes. It exists
// for the in-memory backend and tests; it has no semantic power.
type HashEmbedder struct {
	Dimension int
}

func (h HashEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	dim := h.Dimension
	if dim <= 0 {
		dim = 64
	}
	vector := make([]float32, dim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		hasher := fnv.New32a()
		hasher.Write([]byte(token))
		vector[int(hasher.Sum32())%dim]++
	}
	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vector {
			vector[i] *= scale
		}
	}
	return vector, nil
}
