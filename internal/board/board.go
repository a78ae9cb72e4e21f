// Package board models the whiteboard's persistent side: the raster
// snapshot with its bounded undo history, and the anchored comments.
// It plugs into the key-value store and is independent of the session
// coordinator.
package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/arvang/classroom/internal/core"
	"github.com/arvang/classroom/internal/domain"
	"github.com/arvang/classroom/internal/storage"
)

// MaxHistory bounds the undo stack.
const MaxHistory = 20

var ErrNothingToUndo = errors.New("nothing to undo")

// Board is the whiteboard state for one room. Methods are safe for
// concurrent use: unlike the session sub-models, the board is hit by
// every connection's read pump directly.
type Board struct {
	mu       sync.Mutex
	roomID   domain.RoomID
	store    storage.Store
	history  [][]byte
	comments []domain.BoardComment
}

func dataKey(id domain.RoomID) string     { return fmt.Sprintf("wb_data_%s", id) }
func commentsKey(id domain.RoomID) string { return fmt.Sprintf("wb_comments_%s", id) }

// Load restores the last saved snapshot and comments for the room.
func Load(roomID domain.RoomID, store storage.Store) (*Board, error) {
	b := &Board{roomID: roomID, store: store}
	if data, ok, err := store.Get(dataKey(roomID)); err != nil {
		return nil, err
	} else if ok {
		b.history = append(b.history, data)
	}
	if raw, ok, err := store.Get(commentsKey(roomID)); err != nil {
		return nil, err
	} else if ok {
		if err := json.Unmarshal(raw, &b.comments); err != nil {
			return nil, fmt.Errorf("decode comments for %s: %w", roomID, err)
		}
	}
	return b, nil
}

// Save pushes a new immutable snapshot and persists it. The oldest
// snapshot falls off once the stack holds MaxHistory entries.
func (b *Board) Save(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	snap := make([]byte, len(data))
	copy(snap, data)
	b.history = append(b.history, snap)
	if len(b.history) > MaxHistory {
		b.history = b.history[len(b.history)-MaxHistory:]
	}
	return b.store.Set(dataKey(b.roomID), snap)
}

// Undo pops the latest snapshot and persists the one underneath.
func (b *Board) Undo() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.history) < 2 {
		return nil, ErrNothingToUndo
	}
	b.history = b.history[:len(b.history)-1]
	top := b.history[len(b.history)-1]
	if err := b.store.Set(dataKey(b.roomID), top); err != nil {
		return nil, err
	}
	out := make([]byte, len(top))
	copy(out, top)
	return out, nil
}

// Current returns the latest snapshot, if any.
func (b *Board) Current() ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.history) == 0 {
		return nil, false
	}
	top := b.history[len(b.history)-1]
	out := make([]byte, len(top))
	copy(out, top)
	return out, true
}

func (b *Board) HistoryLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.history)
}

// AddComment anchors a note on the board and persists the list.
func (b *Board) AddComment(x, y float64, text, authorName string) (domain.BoardComment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c := domain.BoardComment{
		ID:         uuid.NewString(),
		X:          x,
		Y:          y,
		Text:       text,
		AuthorName: authorName,
	}
	b.comments = append(b.comments, c)
	if err := b.persistComments(); err != nil {
		b.comments = b.comments[:len(b.comments)-1]
		return domain.BoardComment{}, err
	}
	return c, nil
}

// ResolveComment marks a note resolved. Resolving twice is a no-op.
func (b *Board) ResolveComment(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.comments {
		if b.comments[i].ID == id {
			if b.comments[i].IsResolved {
				return nil
			}
			b.comments[i].IsResolved = true
			return b.persistComments()
		}
	}
	return fmt.Errorf("comment %s: %w", id, core.ErrNotFound)
}

func (b *Board) Comments() []domain.BoardComment {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.BoardComment, len(b.comments))
	copy(out, b.comments)
	return out
}

func (b *Board) persistComments() error {
	raw, err := json.Marshal(b.comments)
	if err != nil {
		return fmt.Errorf("encode comments for %s: %w", b.roomID, err)
	}
	return b.store.Set(commentsKey(b.roomID), raw)
}
