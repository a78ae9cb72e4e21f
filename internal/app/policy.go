package app

import "github.com/arvang/classroom/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickParticipant
)

// Policy decides what to do with a connection that cannot keep up with
// the signal fan-out.
type Policy interface {
	OnBackPressure(p domain.Participant) BackpressureAction
}

// ClassroomPolicy drops frames for the operator and observers and kicks
// slow students. Kicking the teacher would orphan the room.
type ClassroomPolicy struct{}

func (ClassroomPolicy) OnBackPressure(p domain.Participant) BackpressureAction {
	if p.Role == domain.RoleStudent {
		return KickParticipant
	}
	return DropFrame
}
