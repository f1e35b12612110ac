package knowledge

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Record is a stored chunk; only the in-memory backend accepts writes,
// which exist for tests and local seeding.
type Record struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  map[string]any
}

// MemoryStore keeps collections of embedded chunks in process memory and
// searches them by cosine similarity.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]Record)}
}

// Upsert adds records to a collection, creating it when absent.
func (m *MemoryStore) Upsert(_ context.Context, collection string, records []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection] = append(m.collections[collection], records...)
	return nil
}

func (m *MemoryStore) Search(
	_ context.Context,
	collection string,
	query []float32,
	opts SearchOptions,
) ([]Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records, ok := m.collections[collection]
	if !ok {
		return nil, fmt.Errorf("memory: collection not found: %s", collection)
	}
	matches := make([]Match, 0, len(records))
	for i := range records {
		score := cosineSimilarity(query, records[i].Embedding)
		if score < opts.MinScore {
			continue
		}
		matches = append(matches, Match{
			ID:       records[i].ID,
			Score:    score,
			Text:     records[i].Text,
			Metadata: records[i].Metadata,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Score > matches[j].Score
	})
	if opts.TopK > 0 && len(matches) > opts.TopK {
		matches = matches[:opts.TopK]
	}
	return matches, nil
}

func (m *MemoryStore) Collections(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStore) Close(context.Context) error {
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
