package events

import (
	"sync"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/pool-engine/internal/domain"
)

// LogSink publishes engine events to the structured log, one line per event
// with the full payload attached as JSON. Publish never blocks and never
// calls back into the engine.
type LogSink struct{}

func NewLogSink() *LogSink { return &LogSink{} }

func (s *LogSink) Publish(ev domain.Event) {
	payload, err := sonic.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event", ev.Name()).Msg("[events] failed to marshal event")
		return
	}
	log.Info().Str("event", ev.Name()).RawJSON("payload", payload).Msg("[events] published")
}

// MemorySink records events in order for inspection in tests.
type MemorySink struct {
	mu     sync.Mutex
	events []domain.Event
}

func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) Publish(ev domain.Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

// Events returns a copy of everything published so far.
func (s *MemorySink) Events() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Last returns the most recent event, nil when nothing was published.
func (s *MemorySink) Last() domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return nil
	}
	return s.events[len(s.events)-1]
}

var (
	_ domain.EventSink = (*LogSink)(nil)
	_ domain.EventSink = (*MemorySink)(nil)
)
