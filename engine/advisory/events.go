package advisory

import (
	"time"

	"github.com/amlstack/advisor/engine/core"
)

// EventType identifies a pipeline progress event.
type EventType string

const (
	EventRunStarted          EventType = "run_started"
	EventRouted              EventType = "routed"
	EventSpecialistStarted   EventType = "specialist_started"
	EventSpecialistCompleted EventType = "specialist_completed"
	EventSpecialistFailed    EventType = "specialist_failed"
	EventSynthesisStarted    EventType = "synthesis_started"
	EventSynthesisCompleted  EventType = "synthesis_completed"
	EventRunCompleted        EventType = "run_completed"
	EventRunFailed           EventType = "run_failed"
)

// Event is one progress notification emitted by a pipeline run. Front
// ends consume these to stream status incrementally.
type Event struct {
	RunID     string        `json:"run_id"`
	Type      EventType     `json:"type"`
	Category  core.Category `json:"category,omitempty"`
	Message   string        `json:"message,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

func now() time.Time {
	return time.Now().UTC()
}

// EventSink receives pipeline events. Publish must not block for long;
// the pipeline calls it inline.
type EventSink interface {
	Publish(event Event)
}

type nopSink struct{}

func (nopSink) Publish(Event) {}

// ChannelSink forwards events to a channel, dropping when the buffer is
// full so a stalled consumer cannot wedge the pipeline.
type ChannelSink struct {
	ch chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 64
	}
	return &ChannelSink{ch: make(chan Event, buffer)}
}

func (s *ChannelSink) Publish(event Event) {
	select {
	case s.ch <- event:
	default:
	}
}

// Events returns the receive side of the sink.
func (s *ChannelSink) Events() <-chan Event {
	return s.ch
}

// Close closes the event channel; only the publisher side may call it.
func (s *ChannelSink) Close() {
	close(s.ch)
}
