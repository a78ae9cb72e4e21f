package core

import (
	"errors"
	"testing"

	"github.com/arvang/classroom/internal/domain"
)

func TestSelectorStartsOnWhiteboard(t *testing.T) {
	s := NewSelector(NewRoster())
	if got := s.Current().Kind; got != TargetWhiteboard {
		t.Fatalf("initial target = %s, want WHITEBOARD", got)
	}
}

func TestSelectorPinUnknownParticipant(t *testing.T) {
	r := NewRoster()
	s := NewSelector(r)
	before := s.Current()
	err := s.Pin(TargetPinned("ghost"), domain.RoleTeacher)
	if !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
	if s.Current() != before {
		t.Fatalf("target changed on failed pin: %+v", s.Current())
	}
}

func TestSelectorScreenShareRequiresTeacher(t *testing.T) {
	s := NewSelector(NewRoster())
	for _, role := range []domain.Role{domain.RoleStudent, domain.RoleObserver} {
		if err := s.Pin(TargetScreen(), role); !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("role %s: expected ErrPermissionDenied, got %v", role, err)
		}
	}
	if err := s.Pin(TargetScreen(), domain.RoleTeacher); err != nil {
		t.Fatalf("teacher pin: %v", err)
	}
	if s.Current().Kind != TargetScreenShare {
		t.Fatalf("target = %s, want SCREEN_SHARE", s.Current().Kind)
	}
}

func TestSelectorFilePinReplacesScreenShare(t *testing.T) {
	s := NewSelector(NewRoster())
	_ = s.Pin(TargetScreen(), domain.RoleTeacher)
	res := domain.LessonResource{ID: "f1", Name: "worksheet.pdf", Kind: domain.ResourcePDF, Locator: "/files/f1"}
	if err := s.Pin(TargetResource(res), domain.RoleTeacher); err != nil {
		t.Fatalf("file pin: %v", err)
	}
	cur := s.Current()
	if cur.Kind != TargetFile || cur.File.ID != "f1" {
		t.Fatalf("target = %+v, want FILE f1", cur)
	}
}

func TestSelectorFallsBackToWhiteboardWhenPinnedLeaves(t *testing.T) {
	r := NewRoster()
	_ = r.Join(student("a"))
	s := NewSelector(r)
	if err := s.Pin(TargetPinned("a"), domain.RoleStudent); err != nil {
		t.Fatalf("pin: %v", err)
	}
	_ = r.Leave("a")
	s.OnParticipantRemoved("a")
	if s.Current().Kind != TargetWhiteboard {
		t.Fatalf("target = %s, want WHITEBOARD", s.Current().Kind)
	}
}

func TestSelectorRemovalOfUnpinnedIsNoop(t *testing.T) {
	r := NewRoster()
	_ = r.Join(student("a"))
	_ = r.Join(student("b"))
	s := NewSelector(r)
	_ = s.Pin(TargetPinned("a"), domain.RoleStudent)
	s.OnParticipantRemoved("b")
	cur := s.Current()
	if cur.Kind != TargetParticipant || cur.Participant != "a" {
		t.Fatalf("target = %+v, want PARTICIPANT a", cur)
	}
}

func TestSelectorClear(t *testing.T) {
	s := NewSelector(NewRoster())
	s.Clear()
	if s.Current().Kind != TargetNone {
		t.Fatalf("target = %s, want NONE", s.Current().Kind)
	}
}
