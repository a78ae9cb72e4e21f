package core

import "github.com/arvang/classroom/internal/domain"

type ChangeKind string

const (
	ChangeRoster       ChangeKind = "roster"
	ChangePresentation ChangeKind = "presentation"
	ChangeTimeline     ChangeKind = "timeline"
	ChangeChat         ChangeKind = "chat"
	ChangeReaction     ChangeKind = "reaction"
	ChangeClock        ChangeKind = "clock"
)

// Change tells an observer which slice of session state moved and, when
// the mutation produced a feed entry, carries it along so encoders don't
// have to diff the log.
type Change struct {
	Kind  ChangeKind
	Event *domain.AppEvent
}

// Observer receives changes synchronously, after the mutation committed
// and outside the session lock. Observers must not block.
type Observer func(Change)
