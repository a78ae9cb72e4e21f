package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/arvang/classroom/internal/app"
	"github.com/arvang/classroom/internal/domain"
)

func (ctl *Controller) handleBoardSave(sid app.SessionID, conn *WsSignalConn, data []byte) {
	type savePayload struct {
		Type string `json:"type"`
		Data string `json:"data"`
	}
	var p savePayload
	if err := json.Unmarshal(data, &p); err != nil || p.Data == "" {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "board_save", "error": "bad_payload"})
		return
	}
	sess, _, ok := ctl.inRoom(sid, conn, "board_save")
	if !ok {
		return
	}
	b, err := ctl.boardOf(sess.Room().ID)
	if err != nil {
		ctl.sendError(conn, "board_save", err)
		return
	}
	if err := b.Save([]byte(p.Data)); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("room", string(sess.Room().ID)).Msg("board save")
		ctl.sendError(conn, "board_save", err)
		return
	}
	ctl.broadcastRoom(sess, map[string]any{"type": "board", "data": p.Data})
}

func (ctl *Controller) handleBoardUndo(sid app.SessionID, conn *WsSignalConn) {
	sess, _, ok := ctl.inRoom(sid, conn, "board_undo")
	if !ok {
		return
	}
	b, err := ctl.boardOf(sess.Room().ID)
	if err != nil {
		ctl.sendError(conn, "board_undo", err)
		return
	}
	data, err := b.Undo()
	if err != nil {
		ctl.sendError(conn, "board_undo", err)
		return
	}
	ctl.broadcastRoom(sess, map[string]any{"type": "board", "data": string(data)})
}

func (ctl *Controller) handleBoardComment(sid app.SessionID, conn *WsSignalConn, data []byte) {
	type commentPayload struct {
		Type string  `json:"type"`
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
		Text string  `json:"text"`
	}
	var p commentPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Text == "" {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "board_comment", "error": "bad_payload"})
		return
	}
	sess, pid, ok := ctl.inRoom(sid, conn, "board_comment")
	if !ok {
		return
	}
	author, ok := sess.Participant(pid)
	if !ok {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "board_comment", "error": "not_found"})
		return
	}
	b, err := ctl.boardOf(sess.Room().ID)
	if err != nil {
		ctl.sendError(conn, "board_comment", err)
		return
	}
	c, err := b.AddComment(p.X, p.Y, p.Text, author.DisplayName)
	if err != nil {
		ctl.sendError(conn, "board_comment", err)
		return
	}
	ctl.broadcastRoom(sess, struct {
		Type    string              `json:"type"`
		Comment domain.BoardComment `json:"comment"`
	}{Type: "board_comment", Comment: c})
}

func (ctl *Controller) handleBoardResolve(sid app.SessionID, conn *WsSignalConn, data []byte) {
	type resolvePayload struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	}
	var p resolvePayload
	if err := json.Unmarshal(data, &p); err != nil || p.ID == "" {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "board_resolve", "error": "bad_payload"})
		return
	}
	sess, _, ok := ctl.inRoom(sid, conn, "board_resolve")
	if !ok {
		return
	}
	b, err := ctl.boardOf(sess.Room().ID)
	if err != nil {
		ctl.sendError(conn, "board_resolve", err)
		return
	}
	if err := b.ResolveComment(p.ID); err != nil {
		ctl.sendError(conn, "board_resolve", err)
		return
	}
	ctl.broadcastRoom(sess, map[string]any{"type": "board_resolved", "id": p.ID})
}
