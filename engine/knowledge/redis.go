package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/redis/go-redis/v9"
)

// redisStore reads vector sets, one set per collection. Ingestion happens
// out of band; this store only searches and lists.
type redisStore struct {
	client    *redis.Client
	dimension int
}

const (
	redisSetPrefix       = "vec:"
	redisTextAttrKey     = "text"
	redisMetadataAttrKey = "_metadata"
)

func newRedisStore(cfg *StoreConfig) (Store, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("redis: endpoint is required")
	}
	opts, err := redis.ParseURL(cfg.Endpoint)
	if err != nil {
		// Accept a bare host:port as well as a redis:// URL.
		opts = &redis.Options{Addr: cfg.Endpoint}
	}
	if cfg.APIKey != "" {
		opts.Password = cfg.APIKey
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("redis: vector dimension is required")
	}
	return &redisStore{
		client:    redis.NewClient(opts),
		dimension: cfg.Dimension,
	}, nil
}

func (r *redisStore) Search(
	ctx context.Context,
	collection string,
	query []float32,
	opts SearchOptions,
) ([]Match, error) {
	if len(query) != r.dimension {
		return nil, fmt.Errorf("redis: query dimension mismatch: got %d, want %d", len(query), r.dimension)
	}
	count := opts.TopK
	if count <= 0 {
		count = DefaultNumResults
	}
	setKey := redisSetKey(collection)
	results, err := r.client.VSimWithArgsWithScores(
		ctx,
		setKey,
		&redis.VectorValues{Val: float32ToFloat64(query)},
		&redis.VSimArgs{Count: int64(count)},
	).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis: similarity search in %q: %w", collection, err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	payloads, err := r.loadAttributePayloads(ctx, setKey, results)
	if err != nil {
		return nil, err
	}
	return buildMatchesFromPayloads(results, payloads, opts.MinScore)
}

func (r *redisStore) Collections(ctx context.Context) ([]string, error) {
	var names []string
	iter := r.client.Scan(ctx, 0, redisSetPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), redisSetPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis: scan collections: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (r *redisStore) Close(context.Context) error {
	return r.client.Close()
}

func (r *redisStore) loadAttributePayloads(
	ctx context.Context,
	setKey string,
	results []redis.VectorScore,
) ([]string, error) {
	pipe := r.client.Pipeline()
	attrCmds := make([]*redis.StringCmd, len(results))
	for i := range results {
		attrCmds[i] = pipe.VGetAttr(ctx, setKey, results[i].Name)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis: fetch attributes: %w", err)
	}
	payloads := make([]string, len(results))
	for i := range attrCmds {
		raw, err := attrCmds[i].Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				payloads[i] = ""
				continue
			}
			return nil, fmt.Errorf("redis: read attributes for %q: %w", results[i].Name, err)
		}
		payloads[i] = raw
	}
	return payloads, nil
}

func buildMatchesFromPayloads(
	results []redis.VectorScore,
	payloads []string,
	minScore float64,
) ([]Match, error) {
	matches := make([]Match, 0, len(results))
	for i, item := range results {
		if minScore > 0 && item.Score < minScore {
			continue
		}
		if i >= len(payloads) || payloads[i] == "" {
			continue
		}
		match, err := buildMatchFromAttributes(item.Name, item.Score, payloads[i])
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func buildMatchFromAttributes(id string, score float64, attrJSON string) (Match, error) {
	text, metadata, err := parseAttributeJSON(attrJSON)
	if err != nil {
		return Match{}, fmt.Errorf("redis: parse attributes for %q: %w", id, err)
	}
	return Match{
		ID:       id,
		Score:    score,
		Text:     text,
		Metadata: metadata,
	}, nil
}

func parseAttributeJSON(payload string) (string, map[string]any, error) {
	if strings.TrimSpace(payload) == "" {
		return "", make(map[string]any), nil
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return "", nil, err
	}
	text := ""
	if value, ok := decoded[redisTextAttrKey].(string); ok {
		text = value
	}
	meta := make(map[string]any)
	if typed, ok := decoded[redisMetadataAttrKey].(map[string]any); ok {
		meta = typed
	}
	return text, meta, nil
}

func float32ToFloat64(values []float32) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		out[i] = float64(values[i])
	}
	return out
}

func redisSetKey(collection string) string {
	return redisSetPrefix + sanitizeCollectionKey(collection)
}

func sanitizeCollectionKey(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "default"
	}
	builder := strings.Builder{}
	for _, r := range trimmed {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			builder.WriteRune(unicode.ToLower(r))
		default:
			builder.WriteRune('_')
		}
	}
	result := strings.Trim(builder.String(), "_")
	if result == "" {
		return "default"
	}
	return result
}
