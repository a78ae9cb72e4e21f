package core

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/arvang/classroom/internal/domain"
)

// Roster owns the participant set of one session. Records are value
// objects: every read hands out a copy, every write goes through a
// command method. The roster does no permission checks and no locking;
// it is owned and serialized by the session that holds it.
type Roster struct {
	byID  map[domain.ParticipantID]domain.Participant
	order []domain.ParticipantID
}

func NewRoster() *Roster {
	return &Roster{byID: make(map[domain.ParticipantID]domain.Participant)}
}

func (r *Roster) Join(p domain.Participant) error {
	if _, ok := r.byID[p.ID]; ok {
		return fmt.Errorf("join %s: %w", p.ID, ErrDuplicateID)
	}
	if p.DisplayName == "" {
		p.DisplayName = domain.DefaultDisplayName
	}
	if p.Activity == "" {
		p.Activity = domain.ActivityIdle
	}
	r.byID[p.ID] = p
	r.order = append(r.order, p.ID)
	log.Debug().Str("module", "core.roster").Str("id", string(p.ID)).Str("role", string(p.Role)).Msg("participant joined")
	return nil
}

func (r *Roster) Leave(id domain.ParticipantID) error {
	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("leave %s: %w", id, ErrNotFound)
	}
	delete(r.byID, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	log.Debug().Str("module", "core.roster").Str("id", string(id)).Msg("participant left")
	return nil
}

func (r *Roster) Get(id domain.ParticipantID) (domain.Participant, bool) {
	p, ok := r.byID[id]
	return p, ok
}

func (r *Roster) Contains(id domain.ParticipantID) bool {
	_, ok := r.byID[id]
	return ok
}

func (r *Roster) Count() int { return len(r.byID) }

// Snapshot returns participants in join order.
func (r *Roster) Snapshot() []domain.Participant {
	out := make([]domain.Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Teacher returns the first privileged participant, if any.
func (r *Roster) Teacher() (domain.Participant, bool) {
	for _, id := range r.order {
		if p := r.byID[id]; p.Role.Privileged() {
			return p, true
		}
	}
	return domain.Participant{}, false
}

// mutate applies fn to a copy and stores it back. Boolean setters built
// on it are idempotent: rewriting the same value is a no-op, not an error.
func (r *Roster) mutate(id domain.ParticipantID, fn func(*domain.Participant)) error {
	p, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("participant %s: %w", id, ErrNotFound)
	}
	fn(&p)
	r.byID[id] = p
	return nil
}

func (r *Roster) SetMute(id domain.ParticipantID, muted bool) error {
	return r.mutate(id, func(p *domain.Participant) { p.Media.MicMuted = muted })
}

func (r *Roster) SetCamera(id domain.ParticipantID, off bool) error {
	return r.mutate(id, func(p *domain.Participant) { p.Media.CameraOff = off })
}

func (r *Roster) SetScreenSharing(id domain.ParticipantID, sharing bool) error {
	return r.mutate(id, func(p *domain.Participant) { p.Media.ScreenSharing = sharing })
}

func (r *Roster) SetHandRaised(id domain.ParticipantID, raised bool) error {
	return r.mutate(id, func(p *domain.Participant) { p.IsHandRaised = raised })
}

func (r *Roster) SetSpeaking(id domain.ParticipantID, speaking bool) error {
	return r.mutate(id, func(p *domain.Participant) { p.IsSpeaking = speaking })
}

func (r *Roster) AddStar(id domain.ParticipantID) error {
	return r.mutate(id, func(p *domain.Participant) { p.Stars++ })
}

func (r *Roster) SetActivity(id domain.ParticipantID, a domain.ActivityType) error {
	return r.mutate(id, func(p *domain.Participant) { p.Activity = a })
}

// SetActivityAll mirrors the active stage type onto every non-privileged
// participant.
func (r *Roster) SetActivityAll(a domain.ActivityType) {
	for id, p := range r.byID {
		if p.Role.Privileged() {
			continue
		}
		p.Activity = a
		r.byID[id] = p
	}
}

// RaisedHands returns ids with a raised hand, in join order.
func (r *Roster) RaisedHands() []domain.ParticipantID {
	var out []domain.ParticipantID
	for _, id := range r.order {
		if r.byID[id].IsHandRaised {
			out = append(out, id)
		}
	}
	return out
}
