package domain

import "errors"

var ErrStageDurationInvalid = errors.New("stage duration must be positive")

type ResourceKind string

const (
	ResourcePDF   ResourceKind = "PDF"
	ResourceVideo ResourceKind = "VIDEO"
	ResourceImage ResourceKind = "IMAGE"
	ResourceLink  ResourceKind = "LINK"
)

// LessonResource is a file or link attached to a stage or presented on stage.
type LessonResource struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Kind    ResourceKind `json:"kind"`
	Locator string       `json:"locator"`
}

type StageID string

// LessonStage is one scheduled segment of a lesson plan. Stages move
// pending -> active -> completed and never revert on their own.
type LessonStage struct {
	ID              StageID          `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description,omitempty"`
	Activity        ActivityType     `json:"activity"`
	DurationMinutes int              `json:"duration_minutes"`
	IsActive        bool             `json:"is_active"`
	IsCompleted     bool             `json:"is_completed"`
	Resources       []LessonResource `json:"resources,omitempty"`
}

// NewLessonStage validates the one field that has a hard constraint.
func NewLessonStage(id StageID, title string, activity ActivityType, durationMinutes int) (LessonStage, error) {
	if durationMinutes <= 0 {
		return LessonStage{}, ErrStageDurationInvalid
	}
	return LessonStage{
		ID:              id,
		Title:           title,
		Activity:        activity,
		DurationMinutes: durationMinutes,
	}, nil
}
