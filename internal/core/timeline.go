package core

import (
	"fmt"

	"github.com/arvang/classroom/internal/domain"
)

// Progress counts completed stages against the whole plan.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Timeline owns the ordered lesson plan. At most one stage is active;
// deactivating a stage marks it completed and nothing reverts it.
type Timeline struct {
	stages []domain.LessonStage
}

func NewTimeline() *Timeline { return &Timeline{} }

func (t *Timeline) AddStage(s domain.LessonStage) {
	s.IsActive = false
	s.IsCompleted = false
	t.stages = append(t.stages, s)
}

func (t *Timeline) RemoveStage(id domain.StageID) error {
	for i, s := range t.stages {
		if s.ID == id {
			t.stages = append(t.stages[:i], t.stages[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("stage %s: %w", id, ErrNotFound)
}

// Reorder applies a full permutation of the current stage ids. A missing
// or duplicated id rejects the request wholesale; the prior order stays.
func (t *Timeline) Reorder(order []domain.StageID) error {
	if len(order) != len(t.stages) {
		return fmt.Errorf("reorder: got %d ids, have %d stages: %w", len(order), len(t.stages), ErrInvalidPermutation)
	}
	byID := make(map[domain.StageID]domain.LessonStage, len(t.stages))
	for _, s := range t.stages {
		byID[s.ID] = s
	}
	next := make([]domain.LessonStage, 0, len(order))
	for _, id := range order {
		s, ok := byID[id]
		if !ok {
			return fmt.Errorf("reorder: id %s: %w", id, ErrInvalidPermutation)
		}
		delete(byID, id)
		next = append(next, s)
	}
	t.stages = next
	return nil
}

// SetCurrentStage activates the target stage and completes the previously
// active one. Re-activating the already-active stage is a no-op. The
// permission check lives in the session, not here.
func (t *Timeline) SetCurrentStage(id domain.StageID) error {
	target := -1
	for i, s := range t.stages {
		if s.ID == id {
			target = i
			break
		}
	}
	if target == -1 {
		return fmt.Errorf("stage %s: %w", id, ErrNotFound)
	}
	if t.stages[target].IsActive {
		return nil
	}
	for i := range t.stages {
		if t.stages[i].IsActive {
			t.stages[i].IsActive = false
			t.stages[i].IsCompleted = true
		}
	}
	t.stages[target].IsActive = true
	return nil
}

func (t *Timeline) CurrentStage() (domain.LessonStage, bool) {
	for _, s := range t.stages {
		if s.IsActive {
			return s, true
		}
	}
	return domain.LessonStage{}, false
}

func (t *Timeline) Progress() Progress {
	p := Progress{Total: len(t.stages)}
	for _, s := range t.stages {
		if s.IsCompleted {
			p.Completed++
		}
	}
	return p
}

// Stages returns the plan in presentation order.
func (t *Timeline) Stages() []domain.LessonStage {
	out := make([]domain.LessonStage, len(t.stages))
	copy(out, t.stages)
	return out
}
