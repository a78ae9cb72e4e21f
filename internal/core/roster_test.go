package core

import (
	"errors"
	"testing"

	"github.com/arvang/classroom/internal/domain"
)

func student(id string) domain.Participant {
	return domain.Participant{ID: domain.ParticipantID(id), DisplayName: id, Role: domain.RoleStudent, Activity: domain.ActivityIdle}
}

func teacher(id string) domain.Participant {
	return domain.Participant{ID: domain.ParticipantID(id), DisplayName: id, Role: domain.RoleTeacher, Activity: domain.ActivityIdle}
}

func TestRosterRejectsDuplicateJoin(t *testing.T) {
	r := NewRoster()
	if err := r.Join(student("a")); err != nil {
		t.Fatalf("first join: %v", err)
	}
	err := r.Join(student("a"))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if r.Count() != 1 {
		t.Fatalf("roster size = %d, want 1", r.Count())
	}
}

func TestRosterJoinLeaveNeverDuplicates(t *testing.T) {
	r := NewRoster()
	ops := []struct {
		join bool
		id   string
	}{
		{true, "a"}, {true, "b"}, {false, "a"}, {true, "a"}, {false, "c"}, {true, "c"}, {false, "b"},
	}
	for _, op := range ops {
		if op.join {
			_ = r.Join(student(op.id))
		} else {
			_ = r.Leave(domain.ParticipantID(op.id))
		}
		seen := map[domain.ParticipantID]bool{}
		for _, p := range r.Snapshot() {
			if seen[p.ID] {
				t.Fatalf("duplicate id %s after op %+v", p.ID, op)
			}
			seen[p.ID] = true
		}
	}
	if r.Count() != 2 {
		t.Fatalf("roster size = %d, want 2", r.Count())
	}
}

func TestRosterLeaveUnknown(t *testing.T) {
	r := NewRoster()
	if err := r.Leave("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRosterBooleanSettersIdempotent(t *testing.T) {
	r := NewRoster()
	_ = r.Join(student("a"))
	for i := 0; i < 2; i++ {
		if err := r.SetMute("a", true); err != nil {
			t.Fatalf("SetMute: %v", err)
		}
	}
	p, _ := r.Get("a")
	if !p.Media.MicMuted {
		t.Fatal("expected muted")
	}
	if err := r.SetMute("ghost", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRosterSnapshotIsCopy(t *testing.T) {
	r := NewRoster()
	_ = r.Join(student("a"))
	snap := r.Snapshot()
	snap[0].Stars = 99
	p, _ := r.Get("a")
	if p.Stars != 0 {
		t.Fatal("mutating a snapshot leaked into the roster")
	}
}

func TestRosterAddStar(t *testing.T) {
	r := NewRoster()
	_ = r.Join(student("a"))
	_ = r.AddStar("a")
	_ = r.AddStar("a")
	p, _ := r.Get("a")
	if p.Stars != 2 {
		t.Fatalf("stars = %d, want 2", p.Stars)
	}
}

func TestRosterSetActivityAllSkipsTeacher(t *testing.T) {
	r := NewRoster()
	_ = r.Join(teacher("t"))
	_ = r.Join(student("a"))
	r.SetActivityAll(domain.ActivityQuiz)
	tp, _ := r.Get("t")
	sp, _ := r.Get("a")
	if tp.Activity != domain.ActivityIdle {
		t.Fatalf("teacher activity = %s, want IDLE", tp.Activity)
	}
	if sp.Activity != domain.ActivityQuiz {
		t.Fatalf("student activity = %s, want TAKING_QUIZ", sp.Activity)
	}
}
