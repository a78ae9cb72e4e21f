package core

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/arvang/classroom/internal/domain"
)

// ReactionSet holds the floating emoji currently on screen. Entries are
// transient: Sweep drops everything past its TTL. Nothing here is
// persisted or logged.
type ReactionSet struct {
	active []domain.Reaction
	ttl    time.Duration
	now    func() time.Time
}

func NewReactionSet() *ReactionSet {
	return &ReactionSet{ttl: domain.ReactionTTL, now: time.Now}
}

func NewReactionSetAt(ttl time.Duration, now func() time.Time) *ReactionSet {
	return &ReactionSet{ttl: ttl, now: now}
}

// Emit adds a reaction with a random horizontal offset in [10, 90),
// matching where the overlay spawns them.
func (s *ReactionSet) Emit(emoji string, sender domain.ParticipantID) domain.Reaction {
	r := domain.Reaction{
		ID:            uuid.NewString(),
		Emoji:         emoji,
		SenderID:      sender,
		DisplayOffset: rand.Float64()*80 + 10,
		ExpiresAt:     s.now().Add(s.ttl),
	}
	s.active = append(s.active, r)
	return r
}

// Sweep removes expired reactions and reports how many were dropped.
func (s *ReactionSet) Sweep() int {
	now := s.now()
	kept := s.active[:0]
	for _, r := range s.active {
		if r.ExpiresAt.After(now) {
			kept = append(kept, r)
		}
	}
	dropped := len(s.active) - len(kept)
	s.active = kept
	return dropped
}

func (s *ReactionSet) Active() []domain.Reaction {
	out := make([]domain.Reaction, len(s.active))
	copy(out, s.active)
	return out
}
