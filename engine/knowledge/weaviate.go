package knowledge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// weaviateStore talks to a Weaviate-compatible HTTP API. Only the read
// path is implemented; collections are created and populated out of band.
type weaviateStore struct {
	client *resty.Client
}

const weaviateRequestTimeout = 30 * time.Second

func newWeaviateStore(cfg *StoreConfig) (Store, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("weaviate: endpoint is required")
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.Endpoint, "/")).
		SetTimeout(weaviateRequestTimeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	return &weaviateStore{client: client}, nil
}

type weaviateGraphQLResponse struct {
	Data struct {
		Get map[string][]struct {
			Text       string `json:"text"`
			Additional struct {
				ID       string  `json:"id"`
				Distance float64 `json:"distance"`
			} `json:"_additional"`
		} `json:"Get"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (s *weaviateStore) Search(
	ctx context.Context,
	collection string,
	query []float32,
	opts SearchOptions,
) ([]Match, error) {
	if collection == "" {
		return nil, fmt.Errorf("weaviate: collection is required")
	}
	limit := opts.TopK
	if limit <= 0 {
		limit = DefaultNumResults
	}
	body := map[string]any{
		"query": buildNearVectorQuery(collection, query, limit),
	}
	var parsed weaviateGraphQLResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&parsed).
		Post("/v1/graphql")
	if err != nil {
		return nil, fmt.Errorf("weaviate: search request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("weaviate: search returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("weaviate: search failed for collection %q: %s", collection, parsed.Errors[0].Message)
	}
	objects, ok := parsed.Data.Get[collectionClass(collection)]
	if !ok {
		return nil, fmt.Errorf("weaviate: collection not found: %s", collection)
	}
	matches := make([]Match, 0, len(objects))
	for _, obj := range objects {
		match := Match{
			ID:   obj.Additional.ID,
			Text: obj.Text,
			// Weaviate reports cosine distance; invert so higher is better.
			Score: 1 - obj.Additional.Distance,
		}
		if match.Score < opts.MinScore {
			continue
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func (s *weaviateStore) Collections(ctx context.Context) ([]string, error) {
	var parsed struct {
		Classes []struct {
			Class string `json:"class"`
		} `json:"classes"`
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&parsed).
		Get("/v1/schema")
	if err != nil {
		return nil, fmt.Errorf("weaviate: schema request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("weaviate: schema returned status %d", resp.StatusCode())
	}
	names := make([]string, 0, len(parsed.Classes))
	for _, c := range parsed.Classes {
		names = append(names, c.Class)
	}
	return names, nil
}

func (s *weaviateStore) Close(_ context.Context) error {
	return nil
}

func buildNearVectorQuery(collection string, vector []float32, limit int) string {
	parts := make([]string, len(vector))
	for i, v := range vector {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return fmt.Sprintf(
		`{ Get { %s(nearVector: {vector: [%s]}, limit: %d) { text _additional { id distance } } } }`,
		collectionClass(collection),
		strings.Join(parts, ","),
		limit,
	)
}

// collectionClass maps a collection name to a Weaviate class name, which
// must start with an uppercase letter.
func collectionClass(collection string) string {
	if collection == "" {
		return collection
	}
	return strings.ToUpper(collection[:1]) + collection[1:]
}
