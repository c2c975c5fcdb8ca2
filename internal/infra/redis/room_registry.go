package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"fakeout-service/internal/game"
	"fakeout-service/internal/infra/memory"
)

// RoomRegistry wraps the in-memory registry with Redis liveness markers.
// Notes:
//   - Room state itself stays in process memory; a restart loses active rooms.
//   - Redis only marks which rooms and codes are live, giving operators
//     visibility and reserving codes across a future multi-instance setup.
type RoomRegistry struct {
	client *redis.Client
	ttl    time.Duration
	inner  *memory.RoomRegistry
}

func NewRoomRegistry(client *redis.Client, ttl time.Duration) *RoomRegistry {
	return &RoomRegistry{
		client: client,
		ttl:    ttl,
		inner:  memory.NewRoomRegistry(),
	}
}

func (r *RoomRegistry) Insert(room *game.Room) error {
	if err := r.inner.Insert(room); err != nil {
		return err
	}
	// best-effort liveness markers
	ctx := context.Background()
	_ = r.client.Set(ctx, r.roomKey(room.ID()), "1", r.ttl).Err()
	if code := room.Code(); code != "" {
		_ = r.client.Set(ctx, r.codeKey(code), room.ID(), r.ttl).Err()
	}
	return nil
}

func (r *RoomRegistry) Get(roomID string) (*game.Room, bool) {
	return r.inner.Get(roomID)
}

func (r *RoomRegistry) GetByCode(code string) (*game.Room, bool) {
	return r.inner.GetByCode(code)
}

func (r *RoomRegistry) roomKey(roomID string) string {
	return "room:live:" + roomID
}

func (r *RoomRegistry) codeKey(code string) string {
	return "room:code:" + code
}
