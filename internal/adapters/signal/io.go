package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/arvang/classroom/internal/app"
)

func (ctl *Controller) writePump(ctx context.Context, c *WsSignalConn) {
	pingPeriod := ctl.PingPeriod
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, sid app.SessionID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		ctl.drop(sid)
		ctl.Registry.Unbind(sid)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				return
			}
			ctl.handleSignal(sid, c, data)
		}
	}
}

func (ctl *Controller) handleSignal(sid app.SessionID, c *WsSignalConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case "join":
		ctl.handleJoin(sid, c, data)
	case "leave":
		ctl.handleLeave(sid, c)
	case "ping":
		ctl.handlePing(c)
	case "chat":
		ctl.handleChat(sid, c, data)
	case "chat_toggle":
		ctl.handleChatToggle(sid, c, data)
	case "reaction":
		ctl.handleReaction(sid, c, data)
	case "pin":
		ctl.handlePin(sid, c, data)
	case "clear_pin":
		ctl.handleClearPin(sid, c)
	case "present_file":
		ctl.handlePresentFile(sid, c, data)
	case "screen_share":
		ctl.handleScreenShare(sid, c)
	case "stage_set":
		ctl.handleStageSet(sid, c, data)
	case "stage_add":
		ctl.handleStageAdd(sid, c, data)
	case "stage_remove":
		ctl.handleStageRemove(sid, c, data)
	case "stage_reorder":
		ctl.handleStageReorder(sid, c, data)
	case "activity":
		ctl.handleActivity(sid, c, data)
	case "hand":
		ctl.handleHand(sid, c, data)
	case "speaking":
		ctl.handleSpeaking(sid, c, data)
	case "mute":
		ctl.handleMute(sid, c, data)
	case "camera":
		ctl.handleCamera(sid, c, data)
	case "star":
		ctl.handleStar(sid, c, data)
	case "kick":
		ctl.handleKick(sid, c, data)
	case "board_save":
		ctl.handleBoardSave(sid, c, data)
	case "board_undo":
		ctl.handleBoardUndo(sid, c)
	case "board_comment":
		ctl.handleBoardComment(sid, c, data)
	case "board_resolve":
		ctl.handleBoardResolve(sid, c, data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (ctl *Controller) handlePing(c *WsSignalConn) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(c, resp)
}
