package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arvang/classroom/internal/domain"
)

// ChatLog is an append-only message log gated by a room-wide enable
// flag. System lines (join/leave notices) bypass the gate.
type ChatLog struct {
	messages []domain.ChatMessage
	enabled  bool
	now      func() time.Time
}

func NewChatLog() *ChatLog {
	return &ChatLog{enabled: true, now: time.Now}
}

func NewChatLogAt(now func() time.Time) *ChatLog {
	return &ChatLog{enabled: true, now: now}
}

func (c *ChatLog) Enabled() bool { return c.enabled }

func (c *ChatLog) SetEnabled(enabled bool) { c.enabled = enabled }

func (c *ChatLog) Append(sender domain.Participant, text string) (domain.ChatMessage, error) {
	if !c.enabled {
		return domain.ChatMessage{}, fmt.Errorf("chat from %s: %w", sender.ID, ErrChatDisabled)
	}
	if text == "" {
		return domain.ChatMessage{}, domain.ErrChatTextEmpty
	}
	if len(text) > domain.MaxChatTextLen {
		return domain.ChatMessage{}, domain.ErrChatTextTooLong
	}
	m := domain.ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   sender.ID,
		SenderName: sender.DisplayName,
		Text:       text,
		Timestamp:  c.now().UnixMilli(),
	}
	c.messages = append(c.messages, m)
	return m, nil
}

// AppendSystem records a notice line regardless of the enable flag.
func (c *ChatLog) AppendSystem(text string) domain.ChatMessage {
	m := domain.ChatMessage{
		ID:        uuid.NewString(),
		Text:      text,
		Timestamp: c.now().UnixMilli(),
		IsSystem:  true,
	}
	c.messages = append(c.messages, m)
	return m
}

func (c *ChatLog) Messages() []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}
