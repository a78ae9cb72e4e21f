package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/arvang/classroom/internal/app"
	"github.com/arvang/classroom/internal/core"
	"github.com/arvang/classroom/internal/domain"
)

// sessionOf resolves the room session a connection currently signals for.
func (ctl *Controller) sessionOf(sid app.SessionID) (*core.Session, domain.ParticipantID, bool) {
	roomID, pid, ok := ctl.Registry.RoomOf(sid)
	if !ok {
		return nil, "", false
	}
	sess, ok := ctl.Rooms.Get(roomID)
	if !ok {
		return nil, "", false
	}
	return sess, pid, true
}

func (ctl *Controller) handleJoin(sid app.SessionID, conn *WsSignalConn, data []byte) {
	type joinPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
		Name string `json:"name,omitempty"`
		Role string `json:"role,omitempty"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "join", "error": "bad_payload"})
		return
	}

	if _, _, ok := ctl.Registry.RoomOf(sid); ok {
		ctl.handleLeave(sid, conn)
	}

	role := domain.RoleStudent
	switch domain.Role(p.Role) {
	case domain.RoleTeacher:
		role = domain.RoleTeacher
	case domain.RoleObserver:
		role = domain.RoleObserver
	}

	participant, err := domain.NewParticipant(domain.ParticipantID(sid), p.Name, role)
	if err != nil {
		ctl.sendError(conn, "join", err)
		return
	}

	room := domain.Room{ID: domain.RoomID(p.Room), Name: domain.RoomName(p.Room)}
	sess := ctl.ensureSession(room)
	if err := sess.HandleParticipantJoined(participant); err != nil {
		ctl.sendError(conn, "join", err)
		return
	}
	ctl.Registry.BindRoom(sid, room.ID, participant.ID)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Str("role", string(role)).Msg("join")

	resp := struct {
		Type     string               `json:"type"`
		Self     domain.ParticipantID `json:"self"`
		Snapshot core.Snapshot        `json:"snapshot"`
	}{
		Type:     "room_state",
		Self:     participant.ID,
		Snapshot: sess.Snapshot(),
	}
	ctl.sendJSON(conn, resp)
}

// handleLeave detaches from the current room; the connection stays up.
func (ctl *Controller) handleLeave(sid app.SessionID, conn *WsSignalConn) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	sess, pid, ok := ctl.sessionOf(sid)
	if ok {
		if err := sess.HandleParticipantLeft(pid); err != nil {
			log.Error().Err(err).Str("module", "signal").Str("participant", string(pid)).Msg("leave")
		}
		ctl.Limiter.Forget(pid)
	}
	ctl.Registry.ClearRoom(sid)
	ctl.sendJSON(conn, map[string]any{"type": "left"})
}

func (ctl *Controller) handleChat(sid app.SessionID, conn *WsSignalConn, data []byte) {
	type chatPayload struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	var p chatPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "chat", "error": "bad_payload"})
		return
	}
	sess, pid, ok := ctl.sessionOf(sid)
	if !ok {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "chat", "error": "not_in_room"})
		return
	}
	if !ctl.Limiter.Allow(pid) {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "chat", "error": "rate_limited"})
		return
	}
	msg, err := sess.HandleChatMessage(pid, p.Text)
	if err != nil {
		ctl.sendError(conn, "chat", err)
		return
	}
	ctl.broadcastRoom(sess, struct {
		Type    string             `json:"type"`
		Message domain.ChatMessage `json:"message"`
	}{Type: "chat", Message: msg})
}

func (ctl *Controller) handleChatToggle(sid app.SessionID, conn *WsSignalConn, data []byte) {
	type togglePayload struct {
		Type    string `json:"type"`
		Enabled bool   `json:"enabled"`
	}
	var p togglePayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "chat_toggle", "error": "bad_payload"})
		return
	}
	sess, pid, ok := ctl.sessionOf(sid)
	if !ok {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "chat_toggle", "error": "not_in_room"})
		return
	}
	if err := sess.HandleChatToggle(pid, p.Enabled); err != nil {
		ctl.sendError(conn, "chat_toggle", err)
	}
}

func (ctl *Controller) handleReaction(sid app.SessionID, conn *WsSignalConn, data []byte) {
	type reactionPayload struct {
		Type  string `json:"type"`
		Emoji string `json:"emoji"`
	}
	var p reactionPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Emoji == "" {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "reaction", "error": "bad_payload"})
		return
	}
	sess, pid, ok := ctl.sessionOf(sid)
	if !ok {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "reaction", "error": "not_in_room"})
		return
	}
	r, err := sess.HandleReaction(p.Emoji, pid)
	if err != nil {
		ctl.sendError(conn, "reaction", err)
		return
	}
	ctl.broadcastRoom(sess, struct {
		Type     string          `json:"type"`
		Reaction domain.Reaction `json:"reaction"`
	}{Type: "reaction", Reaction: r})
}
