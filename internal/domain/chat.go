package domain

import "errors"

const MaxChatTextLen = 2000

var (
	ErrChatTextEmpty   = errors.New("chat text empty")
	ErrChatTextTooLong = errors.New("chat text too long")
)

type ChatMessage struct {
	ID         string        `json:"id"`
	SenderID   ParticipantID `json:"sender_id"`
	SenderName string        `json:"sender_name"`
	Text       string        `json:"text"`
	Timestamp  int64         `json:"timestamp"`
	IsSystem   bool          `json:"is_system,omitempty"`
}
