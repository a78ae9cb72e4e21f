package core

import (
	"errors"
	"testing"
	"time"

	"github.com/arvang/classroom/internal/domain"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(domain.Room{ID: "r1", Name: "math"})
	if err := s.HandleParticipantJoined(teacher("t")); err != nil {
		t.Fatalf("join teacher: %v", err)
	}
	for _, id := range []string{"a", "b"} {
		if err := s.HandleParticipantJoined(student(id)); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}
	return s
}

func TestSessionDuplicateJoinSurfaced(t *testing.T) {
	s := newTestSession(t)
	err := s.HandleParticipantJoined(student("a"))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if s.ParticipantCount() != 3 {
		t.Fatalf("count = %d, want 3", s.ParticipantCount())
	}
}

func TestSessionLeaveRetargetsSelector(t *testing.T) {
	s := newTestSession(t)
	if err := s.Pin(TargetPinned("a"), "t"); err != nil {
		t.Fatalf("pin: %v", err)
	}
	if err := s.HandleParticipantLeft("a"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if got := s.Snapshot().Target; got.Kind == TargetParticipant && got.Participant == "a" {
		t.Fatalf("stale pin survived leave: %+v", got)
	}
	if got := s.Snapshot().Target.Kind; got != TargetWhiteboard {
		t.Fatalf("target = %s, want WHITEBOARD fallback", got)
	}
}

func TestSessionPrivilegedOpsDeniedForStudents(t *testing.T) {
	s := newTestSession(t)
	_ = s.AddStage("t", stage("s1", "warmup", 10))

	before := s.Snapshot()
	cases := []struct {
		name string
		call func() error
	}{
		{"screen share", func() error { _, err := s.HandleScreenShareToggle("a"); return err }},
		{"stage change", func() error { return s.HandleStageChange("s1", "a") }},
		{"add star", func() error { return s.HandleAddStar("a", "b") }},
		{"kick", func() error { return s.HandleKick("a", "b") }},
		{"mute other", func() error { return s.HandleMuteChanged("a", "b", true) }},
		{"chat toggle", func() error { return s.HandleChatToggle("a", false) }},
		{"add stage", func() error { return s.AddStage("a", stage("s2", "x", 5)) }},
		{"reorder", func() error { return s.ReorderStages("a", []domain.StageID{"s1"}) }},
		{"set activity", func() error { return s.HandleActivitySet("a", "b", domain.ActivityQuiz) }},
	}
	for _, tc := range cases {
		if err := tc.call(); !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("%s: expected ErrPermissionDenied, got %v", tc.name, err)
		}
	}
	after := s.Snapshot()
	if len(after.Stages) != len(before.Stages) || after.Target != before.Target {
		t.Fatal("denied operation mutated state")
	}
	for i, p := range after.Participants {
		if p != before.Participants[i] {
			t.Fatalf("denied operation mutated participant %s", p.ID)
		}
	}
}

func TestSessionStageChangeMirrorsActivity(t *testing.T) {
	s := newTestSession(t)
	st := stage("s1", "quiz time", 15)
	st.Activity = domain.ActivityQuiz
	_ = s.AddStage("t", st)

	if err := s.HandleStageChange("s1", "t"); err != nil {
		t.Fatalf("stage change: %v", err)
	}
	for _, p := range s.Snapshot().Participants {
		want := domain.ActivityQuiz
		if p.Role.Privileged() {
			want = domain.ActivityIdle
		}
		if p.Activity != want {
			t.Fatalf("%s activity = %s, want %s", p.ID, p.Activity, want)
		}
	}

	// A single participant can be retagged afterwards.
	if err := s.HandleActivitySet("t", "a", domain.ActivityExercise); err != nil {
		t.Fatalf("activity set: %v", err)
	}
	p, _ := s.Participant("a")
	if p.Activity != domain.ActivityExercise {
		t.Fatalf("a activity = %s, want %s", p.Activity, domain.ActivityExercise)
	}
}

func TestSessionStageChangeIdempotentNoDuplicateEvent(t *testing.T) {
	s := newTestSession(t)
	_ = s.AddStage("t", stage("s1", "warmup", 10))
	_ = s.HandleStageChange("s1", "t")
	n := len(s.Events())
	if err := s.HandleStageChange("s1", "t"); err != nil {
		t.Fatalf("repeat stage change: %v", err)
	}
	if len(s.Events()) != n {
		t.Fatal("idempotent stage change appended an event")
	}
}

func TestSessionChatGate(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.HandleChatMessage("a", "hi"); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if err := s.HandleChatToggle("t", false); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := s.HandleChatMessage("a", "still there?"); !errors.Is(err, ErrChatDisabled) {
		t.Fatalf("expected ErrChatDisabled, got %v", err)
	}
	if _, err := s.HandleChatMessage("ghost", "boo"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionHandRaiseEventOnRisingEdgeOnly(t *testing.T) {
	s := newTestSession(t)
	n := len(s.Events())
	_ = s.HandleHandRaise("a", "a", true)
	if len(s.Events()) != n+1 {
		t.Fatalf("expected one HAND event, got %d new", len(s.Events())-n)
	}
	_ = s.HandleHandRaise("a", "a", true)
	if len(s.Events()) != n+1 {
		t.Fatal("repeated raise appended another event")
	}
	// teacher may lower, another student may not raise for others
	if err := s.HandleHandRaise("b", "a", true); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if err := s.HandleHandRaise("t", "a", false); err != nil {
		t.Fatalf("teacher lower: %v", err)
	}
	p, _ := s.Participant("a")
	if p.IsHandRaised {
		t.Fatal("hand still raised")
	}
}

func TestSessionScreenShareToggle(t *testing.T) {
	s := newTestSession(t)
	sharing, err := s.HandleScreenShareToggle("t")
	if err != nil || !sharing {
		t.Fatalf("start share: sharing=%v err=%v", sharing, err)
	}
	if got := s.Snapshot().Target.Kind; got != TargetScreenShare {
		t.Fatalf("target = %s, want SCREEN_SHARE", got)
	}
	sharing, err = s.HandleScreenShareToggle("t")
	if err != nil || sharing {
		t.Fatalf("stop share: sharing=%v err=%v", sharing, err)
	}
	if got := s.Snapshot().Target.Kind; got != TargetWhiteboard {
		t.Fatalf("target = %s, want WHITEBOARD after stop", got)
	}
}

func TestSessionFileSelected(t *testing.T) {
	s := newTestSession(t)
	res := domain.LessonResource{ID: "f1", Name: "slides.pdf", Kind: domain.ResourcePDF, Locator: "/files/f1"}
	if err := s.HandleFileSelected(res, "a"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("student present: expected ErrPermissionDenied, got %v", err)
	}
	if err := s.HandleFileSelected(res, "t"); err != nil {
		t.Fatalf("teacher present: %v", err)
	}
	target := s.Snapshot().Target
	if target.Kind != TargetFile || target.File.Name != "slides.pdf" {
		t.Fatalf("target = %+v", target)
	}
}

func TestSessionReactionSweptByTick(t *testing.T) {
	s := newTestSession(t)
	now := time.UnixMilli(0)
	s.reactions = NewReactionSetAt(domain.ReactionTTL, func() time.Time { return now })

	if _, err := s.HandleReaction("⭐", "a"); err != nil {
		t.Fatalf("reaction: %v", err)
	}
	if len(s.Snapshot().Reactions) != 1 {
		t.Fatal("reaction not active")
	}
	if _, err := s.HandleReaction("⭐", "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	now = now.Add(domain.ReactionTTL + time.Second)
	s.Tick()
	if got := s.Snapshot().Reactions; len(got) != 0 {
		t.Fatalf("reactions after TTL = %+v, want none", got)
	}
}

func TestSessionTickerIsSuffixOfLog(t *testing.T) {
	s := newTestSession(t)
	for i := 0; i < 4; i++ {
		_, _ = s.HandleChatMessage("a", "msg")
	}
	all := s.Events()
	ticker := s.Snapshot().Ticker
	if len(ticker) != TickerSize {
		t.Fatalf("ticker len = %d, want %d", len(ticker), TickerSize)
	}
	for i, e := range ticker {
		if e.ID != all[len(all)-TickerSize+i].ID {
			t.Fatalf("ticker is not a suffix of the log at %d", i)
		}
	}
}

func TestSessionObserverNotified(t *testing.T) {
	s := newTestSession(t)
	var got []Change
	unsub := s.Subscribe(func(c Change) { got = append(got, c) })
	_, _ = s.HandleChatMessage("a", "hi")
	if len(got) != 1 || got[0].Kind != ChangeChat || got[0].Event == nil {
		t.Fatalf("changes = %+v", got)
	}
	unsub()
	_, _ = s.HandleChatMessage("a", "bye")
	if len(got) != 1 {
		t.Fatal("observer called after unsubscribe")
	}
}

func TestSessionClockTicks(t *testing.T) {
	s := newTestSession(t)
	s.Start()
	s.Start() // idempotent
	for i := 0; i < 3; i++ {
		s.Tick()
	}
	if got := s.Snapshot().ElapsedSeconds; got != 3 {
		t.Fatalf("elapsed = %d, want 3", got)
	}
}
