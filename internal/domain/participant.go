// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const (
	MaxParticipantIDLen = 36
	MaxDisplayNameLen   = 36

	// DefaultDisplayName is shown when a participant joins without a name.
	DefaultDisplayName = "guest"
)

var (
	ErrDisplayNameTooLong = errors.New("display name too long")
	ErrParticipantIDEmpty = errors.New("participant id empty")
)

type ParticipantID string

type Role string

const (
	RoleTeacher  Role = "TEACHER"
	RoleStudent  Role = "STUDENT"
	RoleObserver Role = "OBSERVER"
)

// Privileged reports whether the role may run operator commands
// (stage changes, screen share, kicks, stars, chat toggle).
func (r Role) Privileged() bool { return r == RoleTeacher }

type ActivityType string

const (
	ActivityIdle       ActivityType = "IDLE"
	ActivityVideo      ActivityType = "WATCHING_VIDEO"
	ActivityExercise   ActivityType = "SOLVING_EXERCISE"
	ActivityAssignment ActivityType = "SUBMITTING_ASSIGNMENT"
	ActivityQuiz       ActivityType = "TAKING_QUIZ"
)

// MediaState mirrors what the transport reports about a participant's
// local devices. The coordinator never inspects the streams themselves.
type MediaState struct {
	MicMuted      bool `json:"mic_muted"`
	CameraOff     bool `json:"camera_off"`
	ScreenSharing bool `json:"screen_sharing"`
}

// Participant is a value object; the roster hands out copies only.
type Participant struct {
	ID           ParticipantID `json:"id"`
	DisplayName  string        `json:"display_name"`
	Role         Role          `json:"role"`
	Media        MediaState    `json:"media"`
	IsSpeaking   bool          `json:"is_speaking"`
	IsHandRaised bool          `json:"is_hand_raised"`
	Stars        int           `json:"stars"`
	Activity     ActivityType  `json:"activity"`
}

// NewParticipant is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewParticipant(id ParticipantID, name string, role Role) (Participant, error) {
	if id == "" {
		id = ParticipantID(uuid.NewString())
	}
	if len(name) > MaxDisplayNameLen {
		return Participant{}, ErrDisplayNameTooLong
	}
	if name == "" {
		name = DefaultDisplayName
	}
	return Participant{
		ID:          id,
		DisplayName: name,
		Role:        role,
		Activity:    ActivityIdle,
	}, nil
}
