package game

import (
	"testing"

	"fakeout-service/internal/domain"
)

// collidingRegistry rejects the first few inserts with ErrCodeInUse to force
// the coordinator's regeneration loop.
type collidingRegistry struct {
	rejections int
	inserted   []*Room
}

func (r *collidingRegistry) Insert(room *Room) error {
	if r.rejections > 0 {
		r.rejections--
		return domain.ErrCodeInUse
	}
	r.inserted = append(r.inserted, room)
	return nil
}

func (r *collidingRegistry) Get(string) (*Room, bool)       { return nil, false }
func (r *collidingRegistry) GetByCode(string) (*Room, bool) { return nil, false }

func TestCreateRoomRetriesOnCodeCollision(t *testing.T) {
	registry := &collidingRegistry{rejections: 3}
	coord := NewCoordinator(registry, nil, nil)

	room, err := coord.CreateRoom(domain.VisibilityPrivate, 3, "room", &domain.SessionPlayer{DisplayName: "Alice"})
	if err != nil {
		t.Fatalf("create with collisions: %v", err)
	}
	if len(registry.inserted) != 1 || registry.inserted[0] != room {
		t.Fatalf("room not inserted after retries")
	}
	if len(room.Code()) != 6 {
		t.Fatalf("expected a fresh 6-digit code, got %q", room.Code())
	}
}

func TestGenerateJoinCodeCoversAllDigits(t *testing.T) {
	seen := make(map[byte]bool)
	for i := 0; i < 200; i++ {
		code, err := generateJoinCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		for j := 0; j < len(code); j++ {
			if code[j] < '0' || code[j] > '9' {
				t.Fatalf("non-digit in code %q", code)
			}
			seen[code[j]] = true
		}
	}
	// 1200 uniform draws miss a given digit with probability well under 1e-50.
	for d := byte('0'); d <= '9'; d++ {
		if !seen[d] {
			t.Fatalf("digit %c never generated", d)
		}
	}
}

func TestCreateRoomGivesUpAfterExhaustedAttempts(t *testing.T) {
	registry := &collidingRegistry{rejections: 100}
	coord := NewCoordinator(registry, nil, nil)

	if _, err := coord.CreateRoom(domain.VisibilityPrivate, 3, "room", &domain.SessionPlayer{DisplayName: "Alice"}); err == nil {
		t.Fatalf("expected error after exhausting code attempts")
	}
}
