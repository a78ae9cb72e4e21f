package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/arvang/classroom/internal/app"
	"github.com/arvang/classroom/internal/board"
	"github.com/arvang/classroom/internal/core"
	"github.com/arvang/classroom/internal/domain"
	"github.com/arvang/classroom/internal/storage"
)

var ErrBackpressure = errors.New("backpressure")

// Controller is the transport edge: it decodes signal commands into
// session handlers and fans session changes back out over websockets.
type Controller struct {
	Rooms    *app.RoomManager
	Registry *app.Registry
	Policy   app.Policy
	Store    storage.Store
	Limiter  *ChatRateLimiter

	// Connection tuning, zero values fall back to sane defaults.
	ReadLimit  int64
	PingPeriod time.Duration

	mu     sync.Mutex
	boards map[domain.RoomID]*board.Board
	subbed map[domain.RoomID]roomSub
}

// roomSub ties a broadcast subscription to the session incarnation it
// was taken on, so a stopped-and-recreated room gets a fresh one.
type roomSub struct {
	sess  *core.Session
	unsub func()
}

func NewController(rooms *app.RoomManager, reg *app.Registry, policy app.Policy, store storage.Store) *Controller {
	return &Controller{
		Rooms:    rooms,
		Registry: reg,
		Policy:   policy,
		Store:    store,
		Limiter:  NewChatRateLimiter(10, 10*time.Second),
		boards:   make(map[domain.RoomID]*board.Board),
		subbed:   make(map[domain.RoomID]roomSub),
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(b []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- b:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and starts the connection pumps.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := app.SessionID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}

	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan []byte, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Registry.Bind(sid, conn, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}

// ensureSession creates the room session on first use and attaches the
// broadcaster that pushes every session change to room members.
func (ctl *Controller) ensureSession(room domain.Room) *core.Session {
	sess := ctl.Rooms.GetOrCreate(room)
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	if sub, ok := ctl.subbed[room.ID]; ok {
		if sub.sess == sess {
			return sess
		}
		sub.unsub()
	}
	ctl.subbed[room.ID] = roomSub{
		sess: sess,
		unsub: sess.Subscribe(func(ch core.Change) {
			ctl.broadcastChange(sess, ch)
		}),
	}
	return sess
}

// StopRoom closes every connection in the room, drops the controller's
// per-room state and stops the session.
func (ctl *Controller) StopRoom(roomID domain.RoomID) {
	for _, snap := range ctl.Registry.MembersOfRoom(roomID) {
		ctl.sendJSON(snap.Conn, map[string]any{"type": "room_closed"})
		ctl.Registry.ClearRoom(snap.SID)
		ctl.Registry.Cancel(snap.SID)
	}
	ctl.mu.Lock()
	if sub, ok := ctl.subbed[roomID]; ok {
		sub.unsub()
		delete(ctl.subbed, roomID)
	}
	delete(ctl.boards, roomID)
	ctl.mu.Unlock()
	ctl.Rooms.StopRoom(roomID)
	log.Info().Str("module", "signal").Str("room", string(roomID)).Msg("room stopped")
}

func (ctl *Controller) boardOf(roomID domain.RoomID) (*board.Board, error) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	if b, ok := ctl.boards[roomID]; ok {
		return b, nil
	}
	b, err := board.Load(roomID, ctl.Store)
	if err != nil {
		return nil, err
	}
	ctl.boards[roomID] = b
	return b, nil
}

func (ctl *Controller) broadcastChange(sess *core.Session, ch core.Change) {
	msg := struct {
		Type     string           `json:"type"`
		Kind     core.ChangeKind  `json:"kind"`
		Event    *domain.AppEvent `json:"event,omitempty"`
		Snapshot core.Snapshot    `json:"snapshot"`
	}{
		Type:     "change",
		Kind:     ch.Kind,
		Event:    ch.Event,
		Snapshot: sess.Snapshot(),
	}
	ctl.broadcastRoom(sess, msg)
}

// broadcastRoom fans a message out to every connection in the room and
// applies the backpressure policy to the ones that cannot keep up.
func (ctl *Controller) broadcastRoom(sess *core.Session, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("broadcast marshal")
		return
	}
	roomID := sess.Room().ID
	for _, snap := range ctl.Registry.MembersOfRoom(roomID) {
		if err := snap.Conn.TrySend(b); err == nil {
			continue
		}
		p, ok := sess.Participant(snap.Participant)
		if !ok {
			continue
		}
		if ctl.Policy != nil && ctl.Policy.OnBackPressure(p) == app.KickParticipant {
			log.Warn().Str("module", "signal").Str("sid", string(snap.SID)).Str("participant", string(p.ID)).Msg("kicking slow consumer")
			ctl.drop(snap.SID)
		}
	}
}

// drop detaches a connection from its room and tears it down.
func (ctl *Controller) drop(sid app.SessionID) {
	if roomID, pid, ok := ctl.Registry.RoomOf(sid); ok {
		if sess, ok := ctl.Rooms.Get(roomID); ok {
			if err := sess.HandleParticipantLeft(pid); err != nil && !errors.Is(err, core.ErrNotFound) {
				log.Error().Err(err).Str("module", "signal").Str("participant", string(pid)).Msg("drop leave")
			}
		}
		ctl.Limiter.Forget(pid)
	}
	ctl.Registry.ClearRoom(sid)
	ctl.Registry.Cancel(sid)
}

func (ctl *Controller) sendJSON(c app.SignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *Controller) sendError(c app.SignalConn, code string, err error) {
	ctl.sendJSON(c, map[string]any{
		"type":  "error",
		"code":  code,
		"error": errText(err),
	})
}

// errText maps the core taxonomy onto stable wire strings.
func errText(err error) string {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return "not_found"
	case errors.Is(err, core.ErrDuplicateID):
		return "duplicate_id"
	case errors.Is(err, core.ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, core.ErrInvalidReference):
		return "invalid_reference"
	case errors.Is(err, core.ErrInvalidPermutation):
		return "invalid_permutation"
	case errors.Is(err, core.ErrChatDisabled):
		return "chat_disabled"
	default:
		return err.Error()
	}
}
