package memory

import (
	"sync"

	"fakeout-service/internal/domain"
	"fakeout-service/internal/game"
)

// RoomRegistry is the in-memory implementation of game.RoomRegistry: one
// process-wide map of live rooms plus a join-code index for private rooms.
// The lock only covers map access; room state has its own lock, so the two
// are never held together.
type RoomRegistry struct {
	mu     sync.RWMutex
	byID   map[string]*game.Room
	byCode map[string]*game.Room
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		byID:   make(map[string]*game.Room),
		byCode: make(map[string]*game.Room),
	}
}

func (r *RoomRegistry) Insert(room *game.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if code := room.Code(); code != "" {
		if _, taken := r.byCode[code]; taken {
			return domain.ErrCodeInUse
		}
		r.byCode[code] = room
	}
	r.byID[room.ID()] = room
	return nil
}

func (r *RoomRegistry) Get(roomID string) (*game.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.byID[roomID]
	return room, ok
}

func (r *RoomRegistry) GetByCode(code string) (*game.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.byCode[code]
	return room, ok
}
