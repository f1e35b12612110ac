package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/amlstack/advisor/pkg/logger"
)

const (
	// DefaultNumResults bounds how many snippets one search returns.
	DefaultNumResults = 5
	// DefaultSnippetLength bounds each snippet's character count.
	DefaultSnippetLength = 1000
)

// Snippet is one ranked, truncated search result.
type Snippet struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Base binds a store and embedder to one collection with fixed result and
// snippet bounds. It is the retrieval capability handed to specialists.
type Base struct {
	store         Store
	embedder      Embedder
	collection    string
	numResults    int
	snippetLength int
	tracer        trace.Tracer
}

// BaseOption customizes a Base.
type BaseOption func(*Base)

func WithNumResults(n int) BaseOption {
	return func(b *Base) {
		if n > 0 {
			b.numResults = n
		}
	}
}

func WithSnippetLength(n int) BaseOption {
	return func(b *Base) {
		if n > 0 {
			b.snippetLength = n
		}
	}
}

func NewBase(store Store, embedder Embedder, collection string, opts ...BaseOption) (*Base, error) {
	if store == nil {
		return nil, fmt.Errorf("knowledge: store is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("knowledge: embedder is required")
	}
	if strings.TrimSpace(collection) == "" {
		return nil, fmt.Errorf("knowledge: collection is required")
	}
	base := &Base{
		store:         store,
		embedder:      embedder,
		collection:    collection,
		numResults:    DefaultNumResults,
		snippetLength: DefaultSnippetLength,
		tracer:        otel.Tracer("advisor.knowledge"),
	}
	for _, opt := range opts {
		opt(base)
	}
	return base, nil
}

// Collection returns the bound collection name.
func (b *Base) Collection() string {
	return b.collection
}

// SearchKnowledge embeds the query and returns ranked snippets, most
// relevant first, each truncated to the configured length. Errors surface
// to the calling specialist; this is a pure read path.
func (b *Base) SearchKnowledge(ctx context.Context, query string) ([]Snippet, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("knowledge: query is required")
	}
	log := logger.FromContext(ctx).With("collection", b.collection)
	start := time.Now()
	ctx, span := b.tracer.Start(ctx, "advisor.knowledge.search", trace.WithAttributes(
		attribute.String("collection", b.collection),
		attribute.Int("num_results", b.numResults),
	))
	defer span.End()

	vector, err := b.embedder.EmbedQuery(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	matches, err := b.store.Search(ctx, b.collection, vector, SearchOptions{TopK: b.numResults})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	snippets := make([]Snippet, 0, len(matches))
	for i := range matches {
		snippets = append(snippets, Snippet{
			Text:  truncateSnippet(matches[i].Text, b.snippetLength),
			Score: matches[i].Score,
		})
	}
	span.SetAttributes(attribute.Int("results", len(snippets)))
	log.Debug("Knowledge search executed",
		"results", len(snippets),
		"duration_seconds", time.Since(start).Seconds(),
	)
	return snippets, nil
}

func truncateSnippet(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// -----------------------------------------------------------------------------
// Search tool
// -----------------------------------------------------------------------------

// SearchTool exposes a Base as a callable LLM tool.
type SearchTool struct {
	base        *Base
	name        string
	description string
}

func NewSearchTool(base *Base, name, description string) *SearchTool {
	return &SearchTool{base: base, name: name, description: description}
}

func (t *SearchTool) Name() string {
	return t.name
}

func (t *SearchTool) Description() string {
	return t.description
}

func (t *SearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query for the knowledge base",
			},
		},
		"required": []string{"query"},
	}
}

// Call implements the llm.Tool contract: arguments carry a single "query"
// field; the result is a JSON array of ranked snippets.
func (t *SearchTool) Call(ctx context.Context, arguments json.RawMessage) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(arguments, &args); err != nil {
		return "", fmt.Errorf("knowledge: invalid search arguments: %w", err)
	}
	snippets, err := t.base.SearchKnowledge(ctx, args.Query)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(snippets)
	if err != nil {
		return "", fmt.Errorf("knowledge: encode snippets: %w", err)
	}
	return string(payload), nil
}
