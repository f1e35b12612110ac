package advisory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/amlstack/advisor/engine/core"
	"github.com/amlstack/advisor/engine/knowledge"
	"github.com/amlstack/advisor/engine/llm"
	"github.com/amlstack/advisor/pkg/logger"
)

// State tracks a single run's forward-only progression.
type State string

const (
	StateIdle                  State = "idle"
	StateRouted                State = "routed"
	StateSpecialistsDispatched State = "specialists_dispatched"
	StateSpecialistsCollected  State = "specialists_collected"
	StateSynthesized           State = "synthesized"
	StateReported              State = "reported"
)

var stateOrder = map[State]int{
	StateIdle:                  0,
	StateRouted:                1,
	StateSpecialistsDispatched: 2,
	StateSpecialistsCollected:  3,
	StateSynthesized:           4,
	StateReported:              5,
}

// Advice is the complete outcome of one pipeline run.
type Advice struct {
	RunID    string
	Query    string
	Decision *RoutingDecision
	Result   *SynthesizedResult
}

// Config tunes a pipeline instance.
type Config struct {
	Models                 Models
	SpecialistConcurrency  int
	SynthesizerConcurrency int
	Mapping                *knowledge.Mapping
	Sink                   EventSink
	// Retrieval bounds for specialist knowledge searches; zero keeps the
	// package defaults.
	NumResults    int
	SnippetLength int
}

// Pipeline wires router, specialist fan-out, and synthesizer into the
// three-stage advisory flow. One Pipeline may serve concurrent runs.
type Pipeline struct {
	router      *Router
	fanOut      *FanOut
	synthesizer *Synthesizer
	sink        EventSink
	tracer      trace.Tracer
}

// NewPipeline builds a pipeline from explicitly owned resources. The
// caller retains ownership of the store and embedder and is responsible
// for closing them.
func NewPipeline(
	factory llm.Factory,
	store knowledge.Store,
	embedder knowledge.Embedder,
	cfg *Config,
) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("advisory: pipeline config is required")
	}
	sink := cfg.Sink
	if sink == nil {
		sink = nopSink{}
	}
	invoker := llm.NewInvoker(factory)
	models := cfg.Models
	specialist := NewSpecialist(invoker, &models, store, embedder, cfg.Mapping,
		knowledge.WithNumResults(cfg.NumResults),
		knowledge.WithSnippetLength(cfg.SnippetLength),
	)
	return &Pipeline{
		router:      NewRouter(invoker, &models),
		fanOut:      NewFanOut(specialist, cfg.SpecialistConcurrency, sink),
		synthesizer: NewSynthesizer(invoker, &models, cfg.SynthesizerConcurrency),
		sink:        sink,
		tracer:      otel.Tracer("advisor.pipeline"),
	}, nil
}

// Run executes the full flow for one query: route, consult specialists,
// synthesize. Router and synthesizer failures abort the run; specialist
// failures reduce the result set.
func (p *Pipeline) Run(ctx context.Context, query string, documents []core.Document) (*Advice, error) {
	runID := uuid.NewString()
	log := logger.FromContext(ctx).With("run_id", runID)
	ctx = logger.ContextWithLogger(ctx, log)

	ctx, span := p.tracer.Start(ctx, "advisor.advisory_session", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.Int("documents", len(documents)),
	))
	defer span.End()

	state := StateIdle
	p.sink.Publish(Event{RunID: runID, Type: EventRunStarted, Message: query, Timestamp: now()})
	if len(documents) == 0 {
		log.Warn("No documents loaded, proceeding with query-only analysis")
	}

	decision, err := p.router.Route(ctx, query)
	if err != nil {
		return nil, p.fail(span, runID, err)
	}
	state = p.advance(state, StateRouted)
	p.sink.Publish(Event{
		RunID:     runID,
		Type:      EventRouted,
		Category:  decision.PrimaryCategory,
		Message:   decision.Reasoning,
		Timestamp: now(),
	})

	state = p.advance(state, StateSpecialistsDispatched)
	results := p.fanOut.Consult(ctx, runID, decision, query, documents)
	state = p.advance(state, StateSpecialistsCollected)
	log.Info("Specialist results collected",
		"requested", len(decision.Categories()),
		"received", len(results),
	)

	p.sink.Publish(Event{RunID: runID, Type: EventSynthesisStarted, Timestamp: now()})
	result, err := p.synthesizer.Synthesize(ctx, query, decision, results)
	if err != nil {
		return nil, p.fail(span, runID, err)
	}
	state = p.advance(state, StateSynthesized)
	p.sink.Publish(Event{RunID: runID, Type: EventSynthesisCompleted, Timestamp: now()})

	p.advance(state, StateReported)
	p.sink.Publish(Event{RunID: runID, Type: EventRunCompleted, Timestamp: now()})
	return &Advice{
		RunID:    runID,
		Query:    query,
		Decision: decision,
		Result:   result,
	}, nil
}

// advance enforces forward-only state transitions.
func (p *Pipeline) advance(from, to State) State {
	if stateOrder[to] <= stateOrder[from] {
		panic(fmt.Sprintf("advisory: invalid state transition %s -> %s", from, to))
	}
	return to
}

func (p *Pipeline) fail(span trace.Span, runID string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	p.sink.Publish(Event{RunID: runID, Type: EventRunFailed, Message: err.Error(), Timestamp: now()})
	return err
}
