package core

import (
	"time"

	"github.com/google/uuid"

	"github.com/arvang/classroom/internal/domain"
)

// EventLog is the append-only session feed. Entries are immutable and
// never removed; the ticker is just a bounded window over the same log.
type EventLog struct {
	entries []domain.AppEvent
	now     func() time.Time
	lastTS  int64
}

func NewEventLog() *EventLog {
	return &EventLog{now: time.Now}
}

// NewEventLogAt takes the clock source, for tests.
func NewEventLogAt(now func() time.Time) *EventLog {
	return &EventLog{now: now}
}

// Append always succeeds. Timestamps are clamped so the log stays
// non-decreasing even if the wall clock steps backwards.
func (l *EventLog) Append(kind domain.EventKind, message string, subject domain.ParticipantID) domain.AppEvent {
	ts := l.now().UnixMilli()
	if ts < l.lastTS {
		ts = l.lastTS
	}
	l.lastTS = ts
	e := domain.AppEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		Timestamp: ts,
		SubjectID: subject,
	}
	l.entries = append(l.entries, e)
	return e
}

// Tail returns the most recent n entries, oldest of the window first.
func (l *EventLog) Tail(n int) []domain.AppEvent {
	if n > len(l.entries) {
		n = len(l.entries)
	}
	if n <= 0 {
		return nil
	}
	out := make([]domain.AppEvent, n)
	copy(out, l.entries[len(l.entries)-n:])
	return out
}

// All returns the full log in chronological order.
func (l *EventLog) All() []domain.AppEvent {
	out := make([]domain.AppEvent, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *EventLog) Len() int { return len(l.entries) }
