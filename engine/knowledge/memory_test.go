package knowledge_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amlstack/advisor/engine/knowledge"
)

func seedStore(t *testing.T) *knowledge.MemoryStore {
	t.Helper()
	store := knowledge.NewMemoryStore()
	err := store.Upsert(context.Background(), "aml_policies", []knowledge.Record{
		{ID: "a", Text: "transaction monitoring policy", Embedding: []float32{1, 0, 0}},
		{ID: "b", Text: "customer onboarding policy", Embedding: []float32{0.9, 0.1, 0}},
		{ID: "c", Text: "unrelated memo", Embedding: []float32{0, 0, 1}},
	})
	require.NoError(t, err)
	return store
}

func TestMemoryStore_ShouldRankByCosineSimilarity(t *testing.T) {
	store := seedStore(t)
	matches, err := store.Search(context.Background(), "aml_policies", []float32{1, 0, 0}, knowledge.SearchOptions{TopK: 2})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].ID)
	assert.Equal(t, "b", matches[1].ID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestMemoryStore_ShouldApplyMinScore(t *testing.T) {
	store := seedStore(t)
	matches, err := store.Search(context.Background(), "aml_policies", []float32{1, 0, 0}, knowledge.SearchOptions{MinScore: 0.5})
	require.NoError(t, err)
	for _, m := range matches {
		assert.GreaterOrEqual(t, m.Score, 0.5)
	}
	assert.Len(t, matches, 2)
}

func TestMemoryStore_ShouldBreakScoreTiesByID(t *testing.T) {
	store := knowledge.NewMemoryStore()
	err := store.Upsert(context.Background(), "col", []knowledge.Record{
		{ID: "z", Embedding: []float32{1, 0}},
		{ID: "a", Embedding: []float32{1, 0}},
	})
	require.NoError(t, err)
	matches, err := store.Search(context.Background(), "col", []float32{1, 0}, knowledge.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].ID)
	assert.Equal(t, "z", matches[1].ID)
}

func TestMemoryStore_ShouldFailOnMissingCollection(t *testing.T) {
	store := knowledge.NewMemoryStore()
	_, err := store.Search(context.Background(), "missing", []float32{1}, knowledge.SearchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection not found")
}

func TestMemoryStore_ShouldListCollectionsSorted(t *testing.T) {
	store := knowledge.NewMemoryStore()
	require.NoError(t, store.Upsert(context.Background(), "b", nil))
	require.NoError(t, store.Upsert(context.Background(), "a", nil))
	names, err := store.Collections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}
