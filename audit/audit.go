// Package audit receives human-readable descriptions of structural
// mutations (parcel creation, bifurcation, deactivation, splits,
// adjustments), keyed by the affected entity. Writes are fire-and-forget:
// the engine never blocks on, or fails because of, the sink.
package audit

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Sink interface {
	Event(entity string, id uuid.UUID, format string, args ...interface{})
}

// LogSink writes events as structured log lines.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(w io.Writer) *LogSink {
	return &LogSink{
		log: zerolog.New(w).With().Timestamp().Str("component", "audit").Logger(),
	}
}

func (s *LogSink) Event(entity string, id uuid.UUID, format string, args ...interface{}) {
	s.log.Info().
		Str("entity", entity).
		Str("id", id.String()).
		Msgf(format, args...)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Event(string, uuid.UUID, string, ...interface{}) {}

type RecordedEvent struct {
	Entity string
	ID     uuid.UUID
	Msg    string
}

// MemorySink records events for tests.
type MemorySink struct {
	mu     sync.Mutex
	events []RecordedEvent
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Event(entity string, id uuid.UUID, format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, RecordedEvent{
		Entity: entity,
		ID:     id,
		Msg:    fmt.Sprintf(format, args...),
	})
}

func (s *MemorySink) Events() []RecordedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedEvent, len(s.events))
	copy(out, s.events)
	return out
}
