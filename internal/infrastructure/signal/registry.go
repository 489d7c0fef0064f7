package signal

import (
	"sync"

	"telecare/internal/core/domain"
	"telecare/internal/infrastructure/monitoring"

	"go.uber.org/zap"
)

// Registry is the process-wide room table. Its lock only guards the map;
// membership changes inside a room take the room's own mutex, so traffic in
// unrelated rooms never serializes. Lock order is always registry before
// room.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*Room

	logger  *zap.SugaredLogger
	metrics *monitoring.PrometheusCollector
}

func NewRegistry(logger *zap.SugaredLogger, metrics *monitoring.PrometheusCollector) *Registry {
	return &Registry{
		rooms:   make(map[domain.RoomID]*Room),
		logger:  logger,
		metrics: metrics,
	}
}

// GetOrCreate returns the room for the given id, creating it on first use,
// and reports whether this call created it. The returned room may be
// concurrently closed by DeleteIfEmpty; callers that get domain.ErrRoomClosed
// from Room.Add should call GetOrCreate again.
func (reg *Registry) GetOrCreate(id domain.RoomID) (*Room, bool) {
	reg.mu.RLock()
	room, ok := reg.rooms[id]
	reg.mu.RUnlock()
	if ok {
		return room, false
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if room, ok := reg.rooms[id]; ok {
		return room, false
	}

	room = newRoom(id, reg.logger, reg.metrics)
	reg.rooms[id] = room
	reg.metrics.RecordRoomCreated()
	reg.logger.Infow("room created", "room_id", id)
	return room, true
}

// Get looks up an existing room without creating one.
func (reg *Registry) Get(id domain.RoomID) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[id]
	return room, ok
}

// DeleteIfEmpty removes the room when it has no members. The emptiness check
// and the map delete happen under both locks, and the room is tombstoned so
// a join that already holds the stale pointer fails with
// domain.ErrRoomClosed instead of landing in a deleted room.
func (reg *Registry) DeleteIfEmpty(id domain.RoomID) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[id]
	if !ok {
		return false
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if len(room.members) > 0 || room.closed {
		return false
	}

	room.closed = true
	delete(reg.rooms, id)
	reg.metrics.RecordRoomDeleted()
	reg.logger.Infow("room deleted", "room_id", id)
	return true
}

// Count returns the number of registered rooms.
func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}
