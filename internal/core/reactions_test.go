package core

import (
	"testing"
	"time"

	"github.com/arvang/classroom/internal/domain"
)

func TestReactionExpiresAfterTTL(t *testing.T) {
	now := time.UnixMilli(0)
	s := NewReactionSetAt(domain.ReactionTTL, func() time.Time { return now })

	r := s.Emit("⭐", "x")
	if len(s.Active()) != 1 {
		t.Fatalf("active = %d, want 1", len(s.Active()))
	}
	if r.DisplayOffset < 10 || r.DisplayOffset >= 90 {
		t.Fatalf("offset %f out of [10, 90)", r.DisplayOffset)
	}

	now = now.Add(3 * time.Second)
	if dropped := s.Sweep(); dropped != 0 {
		t.Fatalf("dropped %d before TTL", dropped)
	}

	now = now.Add(time.Second)
	if dropped := s.Sweep(); dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
	if len(s.Active()) != 0 {
		t.Fatalf("reaction still active after TTL: %+v", s.Active())
	}
}

func TestReactionSweepKeepsYounger(t *testing.T) {
	now := time.UnixMilli(0)
	s := NewReactionSetAt(domain.ReactionTTL, func() time.Time { return now })
	s.Emit("👍", "a")
	now = now.Add(2 * time.Second)
	young := s.Emit("🎉", "b")
	now = now.Add(3 * time.Second)
	s.Sweep()
	active := s.Active()
	if len(active) != 1 || active[0].ID != young.ID {
		t.Fatalf("active = %+v, want only the younger reaction", active)
	}
}
