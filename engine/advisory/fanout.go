package advisory

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/amlstack/advisor/engine/core"
	"github.com/amlstack/advisor/pkg/logger"
)

// FanOut consults every selected specialist with bounded concurrency and
// joins before synthesis. One specialist failing never fails the stage.
type FanOut struct {
	specialist  *Specialist
	concurrency int
	sink        EventSink
}

func NewFanOut(specialist *Specialist, concurrency int, sink EventSink) *FanOut {
	if concurrency <= 0 {
		concurrency = DefaultSpecialistConcurrency
	}
	if sink == nil {
		sink = nopSink{}
	}
	return &FanOut{
		specialist:  specialist,
		concurrency: concurrency,
		sink:        sink,
	}
}

// Consult invokes one specialist per requested category. Results keep the
// requested category order regardless of completion order; failed
// specialists are logged, reported on the sink, and omitted.
func (f *FanOut) Consult(
	ctx context.Context,
	runID string,
	decision *RoutingDecision,
	query string,
	documents []core.Document,
) []SpecialistResult {
	categories := decision.Categories()
	// Index-addressed slots keep requested order deterministic; no other
	// state is shared between concurrent specialist calls.
	slots := make([]*SpecialistResult, len(categories))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(f.concurrency)
	for i, category := range categories {
		group.Go(func() error {
			f.sink.Publish(Event{RunID: runID, Type: EventSpecialistStarted, Category: category, Timestamp: now()})
			result, err := f.specialist.Analyze(groupCtx, category, query, documents, decision.KeyAspects)
			if err != nil {
				logger.FromContext(ctx).Warn("Specialist failed, omitting result",
					"category", category,
					"error", err,
				)
				f.sink.Publish(Event{
					RunID:     runID,
					Type:      EventSpecialistFailed,
					Category:  category,
					Message:   err.Error(),
					Timestamp: now(),
				})
				return nil
			}
			slots[i] = result
			f.sink.Publish(Event{RunID: runID, Type: EventSpecialistCompleted, Category: category, Timestamp: now()})
			return nil
		})
	}
	// Workers only return nil; Wait is the joined barrier before synthesis.
	_ = group.Wait()

	results := make([]SpecialistResult, 0, len(slots))
	for _, slot := range slots {
		if slot != nil {
			results = append(results, *slot)
		}
	}
	return results
}
