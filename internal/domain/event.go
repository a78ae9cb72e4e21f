package domain

type EventKind string

const (
	EventInfo     EventKind = "INFO"
	EventWarning  EventKind = "WARNING"
	EventSuccess  EventKind = "SUCCESS"
	EventChat     EventKind = "CHAT"
	EventHand     EventKind = "HAND"
	EventSpeaking EventKind = "SPEAKING"
)

// AppEvent is one entry of the session feed. Immutable once appended.
type AppEvent struct {
	ID        string        `json:"id"`
	Kind      EventKind     `json:"kind"`
	Message   string        `json:"message"`
	Timestamp int64         `json:"timestamp"`
	SubjectID ParticipantID `json:"subject_id,omitempty"`
}
