package core

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/arvang/classroom/internal/domain"
)

type TargetKind string

const (
	TargetNone        TargetKind = "NONE"
	TargetParticipant TargetKind = "PARTICIPANT"
	TargetWhiteboard  TargetKind = "WHITEBOARD"
	TargetScreenShare TargetKind = "SCREEN_SHARE"
	TargetFile        TargetKind = "FILE"
)

// PresentationTarget is a tagged variant: exactly one thing is on the
// main stage. Setting a new target fully replaces the previous one, so
// screen share, file presentation and pins can never stack.
type PresentationTarget struct {
	Kind        TargetKind            `json:"kind"`
	Participant domain.ParticipantID  `json:"participant,omitempty"`
	File        domain.LessonResource `json:"file,omitempty"`
}

func TargetGrid() PresentationTarget       { return PresentationTarget{Kind: TargetNone} }
func TargetBoard() PresentationTarget      { return PresentationTarget{Kind: TargetWhiteboard} }
func TargetScreen() PresentationTarget     { return PresentationTarget{Kind: TargetScreenShare} }
func TargetPinned(id domain.ParticipantID) PresentationTarget {
	return PresentationTarget{Kind: TargetParticipant, Participant: id}
}
func TargetResource(res domain.LessonResource) PresentationTarget {
	return PresentationTarget{Kind: TargetFile, File: res}
}

// rosterView is the slice of the roster the selector needs for
// reference checks.
type rosterView interface {
	Contains(domain.ParticipantID) bool
}

// Selector owns the single "what is on the main stage" pointer.
type Selector struct {
	roster  rosterView
	current PresentationTarget
}

// NewSelector starts on the whiteboard, the session's home view.
func NewSelector(roster rosterView) *Selector {
	return &Selector{roster: roster, current: TargetBoard()}
}

func (s *Selector) Current() PresentationTarget { return s.current }

// Pin replaces the stage target. Screen share and file presentation are
// operator actions; a participant pin must reference a roster member.
// On failure the previous target is left untouched.
func (s *Selector) Pin(t PresentationTarget, requestedBy domain.Role) error {
	switch t.Kind {
	case TargetScreenShare, TargetFile:
		if !requestedBy.Privileged() {
			return fmt.Errorf("pin %s: %w", t.Kind, ErrPermissionDenied)
		}
	case TargetParticipant:
		if !s.roster.Contains(t.Participant) {
			return fmt.Errorf("pin participant %s: %w", t.Participant, ErrInvalidReference)
		}
	}
	s.current = t
	log.Debug().Str("module", "core.selector").Str("target", string(t.Kind)).Msg("pinned")
	return nil
}

// Clear returns to the grid view. Always permitted.
func (s *Selector) Clear() { s.current = TargetGrid() }

// OnParticipantRemoved is invoked by the session's leave path. When the
// removed participant was on stage the selector falls back to the
// whiteboard. Falling back to the grid would also satisfy the contract;
// the whiteboard is this implementation's documented choice because it
// is the session's home view.
func (s *Selector) OnParticipantRemoved(id domain.ParticipantID) {
	if s.current.Kind == TargetParticipant && s.current.Participant == id {
		s.current = TargetBoard()
		log.Debug().Str("module", "core.selector").Str("id", string(id)).Msg("pinned participant left, back to whiteboard")
	}
}
