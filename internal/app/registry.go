package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/arvang/classroom/internal/domain"
)

type SessionID string

// SignalConn is the transport endpoint the registry fans out to.
// Owned by the adapter; the adapter must Close() it.
type SignalConn interface {
	TrySend([]byte) error
	Close()
}

type connEntry struct {
	RoomID      domain.RoomID
	Participant domain.ParticipantID
	Conn        SignalConn
	Cancel      context.CancelFunc
}

// Registry binds transport session ids to their connection, the
// participant identity behind it and the room it currently signals for.
type Registry struct {
	mu      sync.RWMutex
	entries map[SessionID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[SessionID]*connEntry)}
}

func (r *Registry) Bind(sid SessionID, conn SignalConn, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[sid] = &connEntry{Conn: conn, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound connection")
}

// BindRoom records which room and participant a connection signals for.
func (r *Registry) BindRoom(sid SessionID, roomID domain.RoomID, pid domain.ParticipantID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sid]
	if !ok {
		return false
	}
	e.RoomID = roomID
	e.Participant = pid
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(roomID)).Str("participant", string(pid)).Msg("bound room")
	return true
}

func (r *Registry) Unbind(sid SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbound")
}

// ClearRoom keeps the connection but drops its room association.
func (r *Registry) ClearRoom(sid SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[sid]; ok {
		e.RoomID = ""
		e.Participant = ""
	}
}

// RoomOf returns the room and participant a connection signals for.
func (r *Registry) RoomOf(sid SessionID) (domain.RoomID, domain.ParticipantID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[sid]
	if !ok || e.RoomID == "" {
		return "", "", false
	}
	return e.RoomID, e.Participant, true
}

func (r *Registry) Conn(sid SessionID) (SignalConn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[sid]; ok {
		return e.Conn, true
	}
	return nil, false
}

// ConnSnap pairs a session id with its connection for fan-out.
type ConnSnap struct {
	SID         SessionID
	Participant domain.ParticipantID
	Conn        SignalConn
}

func (r *Registry) MembersOfRoom(id domain.RoomID) []ConnSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ConnSnap, 0, len(r.entries))
	for sid, e := range r.entries {
		if e.RoomID == id {
			out = append(out, ConnSnap{SID: sid, Participant: e.Participant, Conn: e.Conn})
		}
	}
	return out
}

// SIDOf finds the connection currently bound to a participant in a room.
func (r *Registry) SIDOf(roomID domain.RoomID, pid domain.ParticipantID) (SessionID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for sid, e := range r.entries {
		if e.RoomID == roomID && e.Participant == pid {
			return sid, true
		}
	}
	return "", false
}

// Cancel tears down the connection context bound to sid.
func (r *Registry) Cancel(sid SessionID) bool {
	r.mu.RLock()
	e, ok := r.entries[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled connection")
	return true
}
