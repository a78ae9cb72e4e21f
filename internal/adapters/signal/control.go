package signal

import (
	"encoding/json"

	"github.com/arvang/classroom/internal/app"
	"github.com/arvang/classroom/internal/core"
	"github.com/arvang/classroom/internal/domain"
)

// inRoom unwraps the session for a command handler, reporting the
// standard error shape when the connection has no room yet.
func (ctl *Controller) inRoom(sid app.SessionID, conn *WsSignalConn, code string) (*core.Session, domain.ParticipantID, bool) {
	sess, pid, ok := ctl.sessionOf(sid)
	if !ok {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": code, "error": "not_in_room"})
	}
	return sess, pid, ok
}

func (ctl *Controller) handlePin(sid app.SessionID, conn *WsSignalConn, data []byte) {
	type pinPayload struct {
		Type        string                `json:"type"`
		Target      core.TargetKind       `json:"target"`
		Participant domain.ParticipantID  `json:"participant,omitempty"`
		File        domain.LessonResource `json:"file,omitempty"`
	}
	var p pinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "pin", "error": "bad_payload"})
		return
	}
	sess, pid, ok := ctl.inRoom(sid, conn, "pin")
	if !ok {
		return
	}
	var target core.PresentationTarget
	switch p.Target {
	case core.TargetNone:
		target = core.TargetGrid()
	case core.TargetWhiteboard:
		target = core.TargetBoard()
	case core.TargetScreenShare:
		target = core.TargetScreen()
	case core.TargetParticipant:
		target = core.TargetPinned(p.Participant)
	case core.TargetFile:
		target = core.TargetResource(p.File)
	default:
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "pin", "error": "bad_payload"})
		return
	}
	if err := sess.Pin(target, pid); err != nil {
		ctl.sendError(conn, "pin", err)
	}
}

func (ctl *Controller) handleClearPin(sid app.SessionID, conn *WsSignalConn) {
	sess, _, ok := ctl.inRoom(sid, conn, "clear_pin")
	if !ok {
		return
	}
	sess.ClearPin()
}

func (ctl *Controller) handlePresentFile(sid app.SessionID, conn *WsSignalConn, data []byte) {
	type presentPayload struct {
		Type string                `json:"type"`
		File domain.LessonResource `json:"file"`
	}
	var p presentPayload
	if err := json.Unmarshal(data, &p); err != nil || p.File.Name == "" || p.File.Locator == "" {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "present_file", "error": "bad_payload"})
		return
	}
	sess, pid, ok := ctl.inRoom(sid, conn, "present_file")
	if !ok {
		return
	}
	if err := sess.HandleFileSelected(p.File, pid); err != nil {
		ctl.sendError(conn, "present_file", err)
	}
}

func (ctl *Controller) handleScreenShare(sid app.SessionID, conn *WsSignalConn) {
	sess, pid, ok := ctl.inRoom(sid, conn, "screen_share")
	if !ok {
		return
	}
	sharing, err := sess.HandleScreenShareToggle(pid)
	if err != nil {
		ctl.sendError(conn, "screen_share", err)
		return
	}
	ctl.sendJSON(conn, map[string]any{"type": "screen_share", "sharing": sharing})
}

func (ctl *Controller) handleStageSet(sid app.SessionID, conn *WsSignalConn, data []byte) {
	type stagePayload struct {
		Type string         `json:"type"`
		ID   domain.StageID `json:"id"`
	}
	var p stagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "stage_set", "error": "bad_payload"})
		return
	}
	sess, pid, ok := ctl.inRoom(sid, conn, "stage_set")
	if !ok {
		return
	}
	if err := sess.HandleStageChange(p.ID, pid); err != nil {
		ctl.sendError(conn, "stage_set", err)
	}
}

func (ctl *Controller) handleStageAdd(sid app.SessionID, conn *WsSignalConn, data []byte) {
	type stageAddPayload struct {
		Type            string                  `json:"type"`
		ID              domain.StageID          `json:"id"`
		Title           string                  `json:"title"`
		Description     string                  `json:"description,omitempty"`
		Activity        domain.ActivityType     `json:"activity"`
		DurationMinutes int                     `json:"duration_minutes"`
		Resources       []domain.LessonResource `json:"resources,omitempty"`
	}
	var p stageAddPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "stage_add", "error": "bad_payload"})
		return
	}
	stage, err := domain.NewLessonStage(p.ID, p.Title, p.Activity, p.DurationMinutes)
	if err != nil {
		ctl.sendError(conn, "stage_add", err)
		return
	}
	stage.Description = p.Description
	stage.Resources = p.Resources
	sess, pid, ok := ctl.inRoom(sid, conn, "stage_add")
	if !ok {
		return
	}
	if err := sess.AddStage(pid, stage); err != nil {
		ctl.sendError(conn, "stage_add", err)
	}
}

func (ctl *Controller) handleStageRemove(sid app.SessionID, conn *WsSignalConn, data []byte) {
	type stagePayload struct {
		Type string         `json:"type"`
		ID   domain.StageID `json:"id"`
	}
	var p stagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "stage_remove", "error": "bad_payload"})
		return
	}
	sess, pid, ok := ctl.inRoom(sid, conn, "stage_remove")
	if !ok {
		return
	}
	if err := sess.RemoveStage(pid, p.ID); err != nil {
		ctl.sendError(conn, "stage_remove", err)
	}
}

func (ctl *Controller) handleStageReorder(sid app.SessionID, conn *WsSignalConn, data []byte) {
	type reorderPayload struct {
		Type  string           `json:"type"`
		Order []domain.StageID `json:"order"`
	}
	var p reorderPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "stage_reorder", "error": "bad_payload"})
		return
	}
	sess, pid, ok := ctl.inRoom(sid, conn, "stage_reorder")
	if !ok {
		return
	}
	if err := sess.ReorderStages(pid, p.Order); err != nil {
		ctl.sendError(conn, "stage_reorder", err)
	}
}

func (ctl *Controller) handleHand(sid app.SessionID, conn *WsSignalConn, data []byte) {
	type handPayload struct {
		Type   string               `json:"type"`
		Target domain.ParticipantID `json:"target,omitempty"`
		Raised bool                 `json:"raised"`
	}
	var p handPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "hand", "error": "bad_payload"})
		return
	}
	sess, pid, ok := ctl.inRoom(sid, conn, "hand")
	if !ok {
		return
	}
	target := p.Target
	if target == "" {
		target = pid
	}
	if err := sess.HandleHandRaise(pid, target, p.Raised); err != nil {
		ctl.sendError(conn, "hand", err)
	}
}

// handleSpeaking stores the externally computed speaking flag; the
// transport is the source of truth, never the coordinator.
func (ctl *Controller) handleSpeaking(sid app.SessionID, conn *WsSignalConn, data []byte) {
	type speakingPayload struct {
		Type     string `json:"type"`
		Speaking bool   `json:"speaking"`
	}
	var p speakingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "speaking", "error": "bad_payload"})
		return
	}
	sess, pid, ok := ctl.inRoom(sid, conn, "speaking")
	if !ok {
		return
	}
	if err := sess.HandleSpeaking(pid, p.Speaking); err != nil {
		ctl.sendError(conn, "speaking", err)
	}
}

func (ctl *Controller) handleMute(sid app.SessionID, conn *WsSignalConn, data []byte) {
	type mutePayload struct {
		Type   string               `json:"type"`
		Target domain.ParticipantID `json:"target,omitempty"`
		Muted  bool                 `json:"muted"`
	}
	var p mutePayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "mute", "error": "bad_payload"})
		return
	}
	sess, pid, ok := ctl.inRoom(sid, conn, "mute")
	if !ok {
		return
	}
	target := p.Target
	if target == "" {
		target = pid
	}
	if err := sess.HandleMuteChanged(pid, target, p.Muted); err != nil {
		ctl.sendError(conn, "mute", err)
	}
}

func (ctl *Controller) handleCamera(sid app.SessionID, conn *WsSignalConn, data []byte) {
	type cameraPayload struct {
		Type string `json:"type"`
		Off  bool   `json:"off"`
	}
	var p cameraPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "camera", "error": "bad_payload"})
		return
	}
	sess, pid, ok := ctl.inRoom(sid, conn, "camera")
	if !ok {
		return
	}
	if err := sess.HandleCameraChanged(pid, p.Off); err != nil {
		ctl.sendError(conn, "camera", err)
	}
}

func (ctl *Controller) handleStar(sid app.SessionID, conn *WsSignalConn, data []byte) {
	type starPayload struct {
		Type   string               `json:"type"`
		Target domain.ParticipantID `json:"target"`
	}
	var p starPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Target == "" {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "star", "error": "bad_payload"})
		return
	}
	sess, pid, ok := ctl.inRoom(sid, conn, "star")
	if !ok {
		return
	}
	if err := sess.HandleAddStar(pid, p.Target); err != nil {
		ctl.sendError(conn, "star", err)
	}
}

func (ctl *Controller) handleActivity(sid app.SessionID, conn *WsSignalConn, data []byte) {
	type activityPayload struct {
		Type     string               `json:"type"`
		Target   domain.ParticipantID `json:"target"`
		Activity domain.ActivityType  `json:"activity"`
	}
	var p activityPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Target == "" {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "activity", "error": "bad_payload"})
		return
	}
	sess, pid, ok := ctl.inRoom(sid, conn, "activity")
	if !ok {
		return
	}
	if err := sess.HandleActivitySet(pid, p.Target, p.Activity); err != nil {
		ctl.sendError(conn, "activity", err)
	}
}

func (ctl *Controller) handleKick(sid app.SessionID, conn *WsSignalConn, data []byte) {
	type kickPayload struct {
		Type   string               `json:"type"`
		Target domain.ParticipantID `json:"target"`
	}
	var p kickPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Target == "" {
		ctl.sendJSON(conn, map[string]any{"type": "error", "code": "kick", "error": "bad_payload"})
		return
	}
	sess, pid, ok := ctl.inRoom(sid, conn, "kick")
	if !ok {
		return
	}
	if err := sess.HandleKick(pid, p.Target); err != nil {
		ctl.sendError(conn, "kick", err)
		return
	}
	// Detach the kicked participant's connection as well.
	if kickedSID, ok := ctl.Registry.SIDOf(sess.Room().ID, p.Target); ok {
		if c, ok := ctl.Registry.Conn(kickedSID); ok {
			ctl.sendJSON(c, map[string]any{"type": "kicked"})
		}
		ctl.Registry.ClearRoom(kickedSID)
	}
	ctl.Limiter.Forget(p.Target)
}
