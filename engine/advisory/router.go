package advisory

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/amlstack/advisor/engine/llm"
	"github.com/amlstack/advisor/pkg/logger"
)

// Router classifies a query into advisory categories with a single
// structured LLM call. Failures propagate to the caller; there is no
// local recovery or retry.
type Router struct {
	invoker *llm.Invoker
	models  *Models
	tracer  trace.Tracer
}

func NewRouter(invoker *llm.Invoker, models *Models) *Router {
	return &Router{
		invoker: invoker,
		models:  models,
		tracer:  otel.Tracer("advisor.router"),
	}
}

// Route returns the routing decision for a query.
func (r *Router) Route(ctx context.Context, query string) (*RoutingDecision, error) {
	ctx, span := r.tracer.Start(ctx, "advisor.route_query")
	defer span.End()

	output, err := r.invoker.Invoke(ctx, routerSpec(r.models), query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.FromContext(ctx).Error("Routing failed", "error", err)
		return nil, err
	}
	decision, err := decodeOutput[RoutingDecision](output)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := decision.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("primary_category", decision.PrimaryCategory.String()),
		attribute.Int("secondary_categories", len(decision.SecondaryCategories)),
	)
	logger.FromContext(ctx).Info("Query routed",
		"primary_category", decision.PrimaryCategory,
		"secondary_categories", len(decision.SecondaryCategories),
	)
	return decision, nil
}
