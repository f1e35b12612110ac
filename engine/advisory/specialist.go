package advisory

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/amlstack/advisor/engine/core"
	"github.com/amlstack/advisor/engine/knowledge"
	"github.com/amlstack/advisor/engine/llm"
	"github.com/amlstack/advisor/pkg/logger"
)

// Specialist runs one category's analysis with a retrieval tool bound to
// that category's knowledge collection.
type Specialist struct {
	invoker  *llm.Invoker
	models   *Models
	store    knowledge.Store
	embedder knowledge.Embedder
	mapping  *knowledge.Mapping
	baseOpts []knowledge.BaseOption
	tracer   trace.Tracer
}

func NewSpecialist(
	invoker *llm.Invoker,
	models *Models,
	store knowledge.Store,
	embedder knowledge.Embedder,
	mapping *knowledge.Mapping,
	baseOpts ...knowledge.BaseOption,
) *Specialist {
	if mapping == nil {
		mapping = knowledge.NewMapping()
	}
	return &Specialist{
		invoker:  invoker,
		models:   models,
		store:    store,
		embedder: embedder,
		mapping:  mapping,
		baseOpts: baseOpts,
		tracer:   otel.Tracer("advisor.specialist"),
	}
}

// specialistContext is the JSON payload handed to the specialist model.
type specialistContext struct {
	Query      string              `json:"query"`
	KeyAspects []string            `json:"key_aspects"`
	Documents  []specialistDocView `json:"documents"`
}

type specialistDocView struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Type     string `json:"type,omitempty"`
}

// Analyze produces one specialist's result. An error from the underlying
// call means an absent result to the fan-out; the caller decides whether
// that is tolerable.
func (s *Specialist) Analyze(
	ctx context.Context,
	category core.Category,
	query string,
	documents []core.Document,
	keyAspects []string,
) (*SpecialistResult, error) {
	ctx, span := s.tracer.Start(ctx, "advisor.specialist_analysis", trace.WithAttributes(
		attribute.String("category", category.String()),
	))
	defer span.End()

	input, err := s.buildInput(query, documents, keyAspects)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	spec := specialistSpec(category, s.models, s.searchTool(ctx, category))
	output, err := s.invoker.Invoke(ctx, spec, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	result, err := decodeOutput[SpecialistResult](output)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	// The category tag is authoritative from the pipeline, not the model.
	result.Category = category
	return result, nil
}

func (s *Specialist) buildInput(query string, documents []core.Document, keyAspects []string) (string, error) {
	views := make([]specialistDocView, 0, len(documents))
	for i := range documents {
		views = append(views, specialistDocView{
			Filename: documents[i].Filename,
			Content:  documents[i].Excerpt(DocumentExcerptLimit),
			Type:     documents[i].DocumentType,
		})
	}
	payload := specialistContext{
		Query:      query,
		KeyAspects: keyAspects,
		Documents:  views,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode specialist context: %w", err)
	}
	return string(data), nil
}

// searchTool binds the category's knowledge collection as a callable
// tool. A missing mapping falls back to the default collection rather
// than failing the run.
func (s *Specialist) searchTool(ctx context.Context, category core.Category) llm.Tool {
	if s.store == nil || s.embedder == nil {
		return nil
	}
	collection, configured := s.mapping.Resolve(category)
	if !configured {
		logger.FromContext(ctx).Warn("No knowledge collection configured, using fallback",
			"category", category,
			"fallback", collection,
		)
	}
	base, err := knowledge.NewBase(s.store, s.embedder, collection, s.baseOpts...)
	if err != nil {
		logger.FromContext(ctx).Warn("Knowledge base unavailable for specialist",
			"category", category,
			"error", err,
		)
		return nil
	}
	return knowledge.NewSearchTool(
		base,
		fmt.Sprintf("search_%s", category),
		fmt.Sprintf(
			"Search the %s knowledge base for relevant AML information, regulations, guidelines, and best practices.",
			category.Title(),
		),
	)
}
