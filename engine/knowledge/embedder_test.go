package knowledge_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amlstack/advisor/engine/knowledge"
)

func TestHashEmbedder_ShouldBeDeterministic(t *testing.T) {
	embedder := knowledge.HashEmbedder{Dimension: 32}
	first, err := embedder.EmbedQuery(context.Background(), "structuring cash deposits")
	require.NoError(t, err)
	second, err := embedder.EmbedQuery(context.Background(), "structuring cash deposits")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 32)
}

func TestHashEmbedder_ShouldNormalizeVectors(t *testing.T) {
	embedder := knowledge.HashEmbedder{}
	vector, err := embedder.EmbedQuery(context.Background(), "shell company layering")
	require.NoError(t, err)
	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestHashEmbedder_ShouldIgnoreCase(t *testing.T) {
	embedder := knowledge.HashEmbedder{Dimension: 16}
	upper, err := embedder.EmbedQuery(context.Background(), "WIRE TRANSFER")
	require.NoError(t, err)
	lower, err := embedder.EmbedQuery(context.Background(), "wire transfer")
	require.NoError(t, err)
	assert.Equal(t, lower, upper)
}
