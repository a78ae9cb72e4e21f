package core

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/arvang/classroom/internal/domain"
)

// TickerSize is how many recent feed entries the ticker shows.
const TickerSize = 3

// Session composes the roster, presentation selector, lesson timeline,
// event log, chat log, reaction set and session clock behind one API.
//
// A single mutex serializes every handler, so each one runs to
// completion before the next begins and the sub-models need no locking
// of their own. Permission checks for privileged operations all live
// here; the sub-models trust their caller.
type Session struct {
	room domain.Room

	mu        sync.Mutex
	roster    *Roster
	selector  *Selector
	timeline  *Timeline
	events    *EventLog
	chat      *ChatLog
	reactions *ReactionSet
	clock     *SessionClock

	observers map[int]Observer
	nextObs   int
}

func NewSession(room domain.Room) *Session {
	roster := NewRoster()
	return &Session{
		room:      room,
		roster:    roster,
		selector:  NewSelector(roster),
		timeline:  NewTimeline(),
		events:    NewEventLog(),
		chat:      NewChatLog(),
		reactions: NewReactionSet(),
		clock:     NewSessionClock(),
		observers: make(map[int]Observer),
	}
}

func (s *Session) Room() domain.Room { return s.room }

// Subscribe registers an observer and returns its unsubscribe func.
func (s *Session) Subscribe(o Observer) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = o
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// notify is called with the lock held; observers run after it drops.
func (s *Session) notify(c Change) func() {
	if len(s.observers) == 0 {
		return func() {}
	}
	obs := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		obs = append(obs, o)
	}
	return func() {
		for _, o := range obs {
			o(c)
		}
	}
}

func (s *Session) roleOf(id domain.ParticipantID) (domain.Role, error) {
	p, ok := s.roster.Get(id)
	if !ok {
		return "", fmt.Errorf("actor %s: %w", id, ErrNotFound)
	}
	return p.Role, nil
}

// requireTeacher gates every privileged operation in one place.
func (s *Session) requireTeacher(actor domain.ParticipantID) error {
	role, err := s.roleOf(actor)
	if err != nil {
		return err
	}
	if !role.Privileged() {
		return fmt.Errorf("actor %s (%s): %w", actor, role, ErrPermissionDenied)
	}
	return nil
}

func displayName(p domain.Participant) string {
	if p.DisplayName == "" {
		return domain.DefaultDisplayName
	}
	return p.DisplayName
}

// Start begins the session clock. Idempotent.
func (s *Session) Start() {
	s.mu.Lock()
	s.clock.Start()
	fire := s.notify(Change{Kind: ChangeClock})
	s.mu.Unlock()
	fire()
}

// HandleParticipantJoined admits a participant delivered by the
// transport. A duplicate id is a transport bug and is surfaced, not
// retried.
func (s *Session) HandleParticipantJoined(p domain.Participant) error {
	s.mu.Lock()
	if err := s.roster.Join(p); err != nil {
		s.mu.Unlock()
		return err
	}
	joined, _ := s.roster.Get(p.ID)
	s.chat.AppendSystem(fmt.Sprintf("%s joined the class", displayName(joined)))
	e := s.events.Append(domain.EventInfo, fmt.Sprintf("%s joined", displayName(joined)), p.ID)
	fire := s.notify(Change{Kind: ChangeRoster, Event: &e})
	s.mu.Unlock()
	fire()
	return nil
}

// HandleParticipantLeft removes a participant and retargets the stage
// if they were pinned on it.
func (s *Session) HandleParticipantLeft(id domain.ParticipantID) error {
	return s.remove(id, domain.EventInfo, "left")
}

// HandleKick is the privileged removal path.
func (s *Session) HandleKick(actor, target domain.ParticipantID) error {
	s.mu.Lock()
	if err := s.requireTeacher(actor); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	return s.remove(target, domain.EventWarning, "was removed from the class")
}

func (s *Session) remove(id domain.ParticipantID, kind domain.EventKind, verb string) error {
	s.mu.Lock()
	p, ok := s.roster.Get(id)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("participant %s: %w", id, ErrNotFound)
	}
	if err := s.roster.Leave(id); err != nil {
		s.mu.Unlock()
		return err
	}
	s.selector.OnParticipantRemoved(id)
	s.chat.AppendSystem(fmt.Sprintf("%s left the class", displayName(p)))
	e := s.events.Append(kind, fmt.Sprintf("%s %s", displayName(p), verb), id)
	fire := s.notify(Change{Kind: ChangeRoster, Event: &e})
	s.mu.Unlock()
	fire()
	return nil
}

// HandleChatMessage appends a chat line from a roster member.
func (s *Session) HandleChatMessage(sender domain.ParticipantID, text string) (domain.ChatMessage, error) {
	s.mu.Lock()
	p, ok := s.roster.Get(sender)
	if !ok {
		s.mu.Unlock()
		return domain.ChatMessage{}, fmt.Errorf("sender %s: %w", sender, ErrNotFound)
	}
	m, err := s.chat.Append(p, text)
	if err != nil {
		s.mu.Unlock()
		return domain.ChatMessage{}, err
	}
	e := s.events.Append(domain.EventChat, fmt.Sprintf("%s sent a message", displayName(p)), sender)
	fire := s.notify(Change{Kind: ChangeChat, Event: &e})
	s.mu.Unlock()
	fire()
	return m, nil
}

// HandleChatToggle lets the operator open or close room chat.
func (s *Session) HandleChatToggle(actor domain.ParticipantID, enabled bool) error {
	s.mu.Lock()
	if err := s.requireTeacher(actor); err != nil {
		s.mu.Unlock()
		return err
	}
	s.chat.SetEnabled(enabled)
	msg := "chat disabled"
	if enabled {
		msg = "chat enabled"
	}
	e := s.events.Append(domain.EventInfo, msg, "")
	fire := s.notify(Change{Kind: ChangeChat, Event: &e})
	s.mu.Unlock()
	fire()
	return nil
}

// HandleMuteChanged applies a mic state. Participants mute themselves;
// muting someone else is an operator action.
func (s *Session) HandleMuteChanged(actor, target domain.ParticipantID, muted bool) error {
	s.mu.Lock()
	if actor != target {
		if err := s.requireTeacher(actor); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	if err := s.roster.SetMute(target, muted); err != nil {
		s.mu.Unlock()
		return err
	}
	fire := s.notify(Change{Kind: ChangeRoster})
	s.mu.Unlock()
	fire()
	return nil
}

// HandleCameraChanged applies a camera state; self-service only.
func (s *Session) HandleCameraChanged(actor domain.ParticipantID, off bool) error {
	s.mu.Lock()
	if err := s.roster.SetCamera(actor, off); err != nil {
		s.mu.Unlock()
		return err
	}
	fire := s.notify(Change{Kind: ChangeRoster})
	s.mu.Unlock()
	fire()
	return nil
}

// HandleHandRaise toggles a hand. Raising is self-service; lowering may
// also be done by the operator.
func (s *Session) HandleHandRaise(actor, target domain.ParticipantID, raised bool) error {
	s.mu.Lock()
	if actor != target {
		if raised {
			s.mu.Unlock()
			return fmt.Errorf("raise for %s by %s: %w", target, actor, ErrPermissionDenied)
		}
		if err := s.requireTeacher(actor); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	p, ok := s.roster.Get(target)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("participant %s: %w", target, ErrNotFound)
	}
	wasRaised := p.IsHandRaised
	if err := s.roster.SetHandRaised(target, raised); err != nil {
		s.mu.Unlock()
		return err
	}
	change := Change{Kind: ChangeRoster}
	if raised && !wasRaised {
		e := s.events.Append(domain.EventHand, fmt.Sprintf("%s raised a hand", displayName(p)), target)
		change.Event = &e
	}
	fire := s.notify(change)
	s.mu.Unlock()
	fire()
	return nil
}

// HandleSpeaking stores an externally computed speaking flag. The feed
// only records the rising edge.
func (s *Session) HandleSpeaking(id domain.ParticipantID, speaking bool) error {
	s.mu.Lock()
	p, ok := s.roster.Get(id)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("participant %s: %w", id, ErrNotFound)
	}
	wasSpeaking := p.IsSpeaking
	if err := s.roster.SetSpeaking(id, speaking); err != nil {
		s.mu.Unlock()
		return err
	}
	change := Change{Kind: ChangeRoster}
	if speaking && !wasSpeaking {
		e := s.events.Append(domain.EventSpeaking, fmt.Sprintf("%s is speaking", displayName(p)), id)
		change.Event = &e
	}
	fire := s.notify(change)
	s.mu.Unlock()
	fire()
	return nil
}

// HandleAddStar awards a star; operator only.
func (s *Session) HandleAddStar(actor, target domain.ParticipantID) error {
	s.mu.Lock()
	if err := s.requireTeacher(actor); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.roster.AddStar(target); err != nil {
		s.mu.Unlock()
		return err
	}
	p, _ := s.roster.Get(target)
	e := s.events.Append(domain.EventSuccess, fmt.Sprintf("%s earned a star", displayName(p)), target)
	fire := s.notify(Change{Kind: ChangeRoster, Event: &e})
	s.mu.Unlock()
	fire()
	return nil
}

// HandleActivitySet mirrors an activity tag onto one participant;
// operator only.
func (s *Session) HandleActivitySet(actor, target domain.ParticipantID, activity domain.ActivityType) error {
	s.mu.Lock()
	if err := s.requireTeacher(actor); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.roster.SetActivity(target, activity); err != nil {
		s.mu.Unlock()
		return err
	}
	fire := s.notify(Change{Kind: ChangeRoster})
	s.mu.Unlock()
	fire()
	return nil
}

// HandleReaction emits a floating emoji from a roster member.
func (s *Session) HandleReaction(emoji string, sender domain.ParticipantID) (domain.Reaction, error) {
	s.mu.Lock()
	if !s.roster.Contains(sender) {
		s.mu.Unlock()
		return domain.Reaction{}, fmt.Errorf("sender %s: %w", sender, ErrNotFound)
	}
	r := s.reactions.Emit(emoji, sender)
	fire := s.notify(Change{Kind: ChangeReaction})
	s.mu.Unlock()
	fire()
	return r, nil
}

// Pin replaces the stage target. Permission for screen share and file
// targets is enforced by the selector against the actor's role.
func (s *Session) Pin(target PresentationTarget, actor domain.ParticipantID) error {
	s.mu.Lock()
	role, err := s.roleOf(actor)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.selector.Pin(target, role); err != nil {
		s.mu.Unlock()
		return err
	}
	fire := s.notify(Change{Kind: ChangePresentation})
	s.mu.Unlock()
	fire()
	return nil
}

// ClearPin returns to the grid view; always permitted.
func (s *Session) ClearPin() {
	s.mu.Lock()
	s.selector.Clear()
	fire := s.notify(Change{Kind: ChangePresentation})
	s.mu.Unlock()
	fire()
}

// HandleFileSelected presents a validated resource on the main stage.
func (s *Session) HandleFileSelected(res domain.LessonResource, actor domain.ParticipantID) error {
	s.mu.Lock()
	role, err := s.roleOf(actor)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.selector.Pin(TargetResource(res), role); err != nil {
		s.mu.Unlock()
		return err
	}
	e := s.events.Append(domain.EventInfo, fmt.Sprintf("file %s presented", res.Name), actor)
	fire := s.notify(Change{Kind: ChangePresentation, Event: &e})
	s.mu.Unlock()
	fire()
	return nil
}

// HandleScreenShareToggle flips the operator's screen share. Stopping
// falls back to the whiteboard, like the pinned-participant-left path.
func (s *Session) HandleScreenShareToggle(actor domain.ParticipantID) (bool, error) {
	s.mu.Lock()
	role, err := s.roleOf(actor)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	sharing := s.selector.Current().Kind != TargetScreenShare
	if sharing {
		if err := s.selector.Pin(TargetScreen(), role); err != nil {
			s.mu.Unlock()
			return false, err
		}
	} else {
		if !role.Privileged() {
			s.mu.Unlock()
			return false, fmt.Errorf("stop screen share by %s: %w", actor, ErrPermissionDenied)
		}
		_ = s.selector.Pin(TargetBoard(), role)
	}
	_ = s.roster.SetScreenSharing(actor, sharing)
	msg := "screen share stopped"
	if sharing {
		msg = "screen share started"
	}
	e := s.events.Append(domain.EventInfo, msg, actor)
	fire := s.notify(Change{Kind: ChangePresentation, Event: &e})
	s.mu.Unlock()
	fire()
	return sharing, nil
}

// HandleStageChange activates a lesson stage, completes the previous
// one and mirrors the stage activity onto every student.
func (s *Session) HandleStageChange(id domain.StageID, actor domain.ParticipantID) error {
	s.mu.Lock()
	if err := s.requireTeacher(actor); err != nil {
		s.mu.Unlock()
		return err
	}
	if cur, ok := s.timeline.CurrentStage(); ok && cur.ID == id {
		s.mu.Unlock()
		return nil
	}
	if err := s.timeline.SetCurrentStage(id); err != nil {
		s.mu.Unlock()
		return err
	}
	stage, _ := s.timeline.CurrentStage()
	s.roster.SetActivityAll(stage.Activity)
	e := s.events.Append(domain.EventInfo, fmt.Sprintf("stage started: %s", stage.Title), "")
	fire := s.notify(Change{Kind: ChangeTimeline, Event: &e})
	s.mu.Unlock()
	fire()
	log.Debug().Str("module", "core.session").Str("room", string(s.room.ID)).Str("stage", string(id)).Msg("stage changed")
	return nil
}

// AddStage appends a stage to the lesson plan; operator only.
func (s *Session) AddStage(actor domain.ParticipantID, stage domain.LessonStage) error {
	s.mu.Lock()
	if err := s.requireTeacher(actor); err != nil {
		s.mu.Unlock()
		return err
	}
	s.timeline.AddStage(stage)
	fire := s.notify(Change{Kind: ChangeTimeline})
	s.mu.Unlock()
	fire()
	return nil
}

// SeedStages loads an authored lesson plan before anyone joins, so no
// actor check applies. Used by the room manager at session creation.
func (s *Session) SeedStages(stages []domain.LessonStage) {
	s.mu.Lock()
	for _, st := range stages {
		s.timeline.AddStage(st)
	}
	s.mu.Unlock()
}

// RemoveStage drops a stage from the plan; operator only.
func (s *Session) RemoveStage(actor domain.ParticipantID, id domain.StageID) error {
	s.mu.Lock()
	if err := s.requireTeacher(actor); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.timeline.RemoveStage(id); err != nil {
		s.mu.Unlock()
		return err
	}
	fire := s.notify(Change{Kind: ChangeTimeline})
	s.mu.Unlock()
	fire()
	return nil
}

// ReorderStages applies a full permutation of the plan; operator only.
func (s *Session) ReorderStages(actor domain.ParticipantID, order []domain.StageID) error {
	s.mu.Lock()
	if err := s.requireTeacher(actor); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.timeline.Reorder(order); err != nil {
		s.mu.Unlock()
		return err
	}
	fire := s.notify(Change{Kind: ChangeTimeline})
	s.mu.Unlock()
	fire()
	return nil
}

// Tick advances the session clock by one second and sweeps expired
// reactions. Driven by an external ticker.
func (s *Session) Tick() {
	s.mu.Lock()
	s.clock.Tick()
	dropped := s.reactions.Sweep()
	var fire func()
	if dropped > 0 {
		fire = s.notify(Change{Kind: ChangeReaction})
	} else {
		fire = s.notify(Change{Kind: ChangeClock})
	}
	s.mu.Unlock()
	fire()
}

// Snapshot is the read view the transport and UI encode from.
type Snapshot struct {
	Room           domain.Room          `json:"room"`
	Participants   []domain.Participant `json:"participants"`
	Target         PresentationTarget   `json:"target"`
	Stages         []domain.LessonStage `json:"stages"`
	Progress       Progress             `json:"progress"`
	Ticker         []domain.AppEvent    `json:"ticker"`
	ChatEnabled    bool                 `json:"chat_enabled"`
	Reactions      []domain.Reaction    `json:"reactions"`
	ElapsedSeconds int                  `json:"elapsed_seconds"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Room:           s.room,
		Participants:   s.roster.Snapshot(),
		Target:         s.selector.Current(),
		Stages:         s.timeline.Stages(),
		Progress:       s.timeline.Progress(),
		Ticker:         s.events.Tail(TickerSize),
		ChatEnabled:    s.chat.Enabled(),
		Reactions:      s.reactions.Active(),
		ElapsedSeconds: s.clock.ElapsedSeconds(),
	}
}

// Events returns the full feed for the log panel.
func (s *Session) Events() []domain.AppEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events.All()
}

// Messages returns the chat history.
func (s *Session) Messages() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chat.Messages()
}

// Participant looks up one roster record by id.
func (s *Session) Participant(id domain.ParticipantID) (domain.Participant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Get(id)
}

// ParticipantCount reports the roster size.
func (s *Session) ParticipantCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Count()
}
