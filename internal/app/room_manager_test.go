package app

import (
	"context"
	"testing"

	"github.com/arvang/classroom/internal/domain"
)

func TestRoomManagerGetOrCreateIsStable(t *testing.T) {
	m := NewRoomManager(context.Background())
	room := domain.Room{ID: "r1", Name: "math"}
	a := m.GetOrCreate(room)
	b := m.GetOrCreate(room)
	if a != b {
		t.Fatal("GetOrCreate returned a second session for the same room")
	}
	if _, ok := m.Get("r1"); !ok {
		t.Fatal("Get did not find the room")
	}
	if _, ok := m.Get("ghost"); ok {
		t.Fatal("Get found a room that was never created")
	}
}

func TestRoomManagerSeedsLessonPlan(t *testing.T) {
	m := NewRoomManager(context.Background())
	s1, _ := domain.NewLessonStage("s1", "warmup", domain.ActivityIdle, 5)
	s2, _ := domain.NewLessonStage("s2", "quiz", domain.ActivityQuiz, 15)
	m.SeedLessonPlan("r1", []domain.LessonStage{s1, s2})

	sess := m.GetOrCreate(domain.Room{ID: "r1", Name: "math"})
	snap := sess.Snapshot()
	if len(snap.Stages) != 2 || snap.Stages[0].ID != "s1" || snap.Stages[1].ID != "s2" {
		t.Fatalf("stages = %+v", snap.Stages)
	}

	// Seeding an already-live room applies immediately.
	s3, _ := domain.NewLessonStage("s3", "recap", domain.ActivityIdle, 5)
	m.SeedLessonPlan("r1", []domain.LessonStage{s3})
	if got := len(sess.Snapshot().Stages); got != 3 {
		t.Fatalf("stages after live seed = %d, want 3", got)
	}
}

func TestRoomManagerListAndStop(t *testing.T) {
	m := NewRoomManager(context.Background())
	m.GetOrCreate(domain.Room{ID: "r1", Name: "math"})
	m.GetOrCreate(domain.Room{ID: "r2", Name: "physics"})
	if got := len(m.List()); got != 2 {
		t.Fatalf("list = %d rooms, want 2", got)
	}
	m.StopRoom("r1")
	if got := len(m.List()); got != 1 {
		t.Fatalf("list after stop = %d rooms, want 1", got)
	}
	if _, ok := m.Get("r1"); ok {
		t.Fatal("stopped room still reachable")
	}
}
