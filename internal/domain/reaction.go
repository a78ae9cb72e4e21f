package domain

import "time"

// ReactionTTL is how long an emitted reaction stays visible.
const ReactionTTL = 4 * time.Second

// Reaction is ephemeral: emitted, shown, swept after ReactionTTL.
type Reaction struct {
	ID            string        `json:"id"`
	Emoji         string        `json:"emoji"`
	SenderID      ParticipantID `json:"sender_id"`
	DisplayOffset float64       `json:"display_offset"`
	ExpiresAt     time.Time     `json:"-"`
}
