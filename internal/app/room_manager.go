package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/arvang/classroom/internal/core"
	"github.com/arvang/classroom/internal/domain"
)

// RoomInfo is a read-only listing row for the HTTP API.
type RoomInfo struct {
	ID               domain.RoomID   `json:"id"`
	Name             domain.RoomName `json:"name"`
	ParticipantCount int             `json:"participant_count"`
	ElapsedSeconds   int             `json:"elapsed_seconds"`
}

// RoomManager owns the live sessions, one per room. Creating a room
// starts its session clock and the per-room tick loop that drives the
// clock and reaction expiry.
type RoomManager struct {
	ctx        context.Context
	tickPeriod time.Duration

	mu      sync.RWMutex
	rooms   map[domain.RoomID]*managedRoom
	seeders map[domain.RoomID][]domain.LessonStage
}

type managedRoom struct {
	session *core.Session
	cancel  context.CancelFunc
}

func NewRoomManager(ctx context.Context) *RoomManager {
	return &RoomManager{
		ctx:        ctx,
		tickPeriod: time.Second,
		rooms:      make(map[domain.RoomID]*managedRoom),
		seeders:    make(map[domain.RoomID][]domain.LessonStage),
	}
}

// SeedLessonPlan registers an authored lesson plan applied when the
// room's session is first created.
func (m *RoomManager) SeedLessonPlan(id domain.RoomID, stages []domain.LessonStage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mr, ok := m.rooms[id]; ok {
		mr.session.SeedStages(stages)
		return
	}
	m.seeders[id] = stages
}

func (m *RoomManager) GetOrCreate(room domain.Room) *core.Session {
	m.mu.RLock()
	mr, ok := m.rooms[room.ID]
	m.mu.RUnlock()
	if ok {
		return mr.session
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if mr, ok = m.rooms[room.ID]; ok {
		return mr.session
	}
	sess := core.NewSession(room)
	if stages, ok := m.seeders[room.ID]; ok {
		sess.SeedStages(stages)
		delete(m.seeders, room.ID)
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.rooms[room.ID] = &managedRoom{session: sess, cancel: cancel}
	sess.Start()
	go m.tickLoop(ctx, sess)
	log.Info().Str("module", "app.rooms").Str("room", string(room.ID)).Msg("session created")
	return sess
}

func (m *RoomManager) Get(id domain.RoomID) (*core.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mr, ok := m.rooms[id]
	if !ok {
		return nil, false
	}
	return mr.session, true
}

func (m *RoomManager) List() []RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RoomInfo, 0, len(m.rooms))
	for id, mr := range m.rooms {
		snap := mr.session.Snapshot()
		out = append(out, RoomInfo{
			ID:               id,
			Name:             snap.Room.Name,
			ParticipantCount: len(snap.Participants),
			ElapsedSeconds:   snap.ElapsedSeconds,
		})
	}
	return out
}

func (m *RoomManager) StopRoom(id domain.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mr, ok := m.rooms[id]; ok {
		mr.cancel()
		delete(m.rooms, id)
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("session stopped")
	}
}

func (m *RoomManager) tickLoop(ctx context.Context, sess *core.Session) {
	t := time.NewTicker(m.tickPeriod)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			sess.Tick()
		}
	}
}
