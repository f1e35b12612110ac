package advisory

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"github.com/amlstack/advisor/engine/llm"
	"github.com/amlstack/advisor/pkg/logger"
)

// Synthesizer merges specialist results into the final advisory with one
// structured LLM call. Failure is fatal to the run: there is no fallback
// stage downstream.
type Synthesizer struct {
	invoker *llm.Invoker
	models  *Models
	// gate serializes synthesis calls across concurrent pipeline runs
	// sharing one model deployment.
	gate   *semaphore.Weighted
	tracer trace.Tracer
}

func NewSynthesizer(invoker *llm.Invoker, models *Models, concurrency int) *Synthesizer {
	if concurrency <= 0 {
		concurrency = DefaultSynthesizerConcurrency
	}
	return &Synthesizer{
		invoker: invoker,
		models:  models,
		gate:    semaphore.NewWeighted(int64(concurrency)),
		tracer:  otel.Tracer("advisor.synthesizer"),
	}
}

type synthesisInput struct {
	UserQuery         string             `json:"user_query"`
	RoutingDecision   *RoutingDecision   `json:"routing_decision"`
	SpecialistResults []SpecialistResult `json:"specialist_analyses"`
}

// Synthesize merges the surviving specialist results. The returned value
// carries those results verbatim regardless of what the model echoes.
func (s *Synthesizer) Synthesize(
	ctx context.Context,
	query string,
	decision *RoutingDecision,
	results []SpecialistResult,
) (*SynthesizedResult, error) {
	if err := s.gate.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.gate.Release(1)

	ctx, span := s.tracer.Start(ctx, "advisor.synthesize_advice")
	defer span.End()

	input, err := json.MarshalIndent(synthesisInput{
		UserQuery:         query,
		RoutingDecision:   decision,
		SpecialistResults: results,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode synthesis input: %w", err)
	}
	output, err := s.invoker.Invoke(ctx, synthesizerSpec(s.models), string(input))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.FromContext(ctx).Error("Synthesis failed", "error", err)
		return nil, err
	}
	synthesized, err := decodeOutput[SynthesizedResult](output)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	synthesized.SpecialistResults = results
	return synthesized, nil
}
