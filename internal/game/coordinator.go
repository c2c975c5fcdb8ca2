package game

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"

	"github.com/google/uuid"

	"fakeout-service/internal/domain"
)

// RoomRegistry abstracts how rooms are stored and indexed (in-memory, Redis-marked, etc).
type RoomRegistry interface {
	// Insert registers a room; ErrCodeInUse if its private code collides.
	Insert(room *Room) error
	Get(roomID string) (*Room, bool)
	GetByCode(code string) (*Room, bool)
}

// ContentProvider supplies topics and evenly-distributed question sets.
type ContentProvider interface {
	ListTopics(ctx context.Context) ([]string, error)
	QuestionsForTopics(ctx context.Context, total int, topics []string) ([]domain.Question, error)
}

// ResultStore durably records final scores and ranks for logged-in players.
type ResultStore interface {
	RecordGameSession(ctx context.Context, meta domain.GameSessionMeta) (int64, error)
	RecordGameResult(ctx context.Context, gameSessionID, accountID int64, finalScore, finalRank int) error
	AddExperience(ctx context.Context, accountID int64, amount int) error
}

// Coordinator owns all room mutation. It resolves a room through the registry
// (registry lock released before any room work), then serializes the action
// under that room's own lock. It never talks to transport; the gateway pulls
// snapshots and broadcasts them.
type Coordinator struct {
	registry RoomRegistry
	content  ContentProvider
	results  ResultStore
}

func NewCoordinator(registry RoomRegistry, content ContentProvider, results ResultStore) *Coordinator {
	return &Coordinator{registry: registry, content: content, results: results}
}

const codeAttempts = 10

// CreateRoom allocates a room, registers the creator as owner (ready by
// default) and stores it. Private rooms get a unique 6-digit join code.
func (c *Coordinator) CreateRoom(visibility domain.Visibility, totalQuestions int, name string, creator *domain.SessionPlayer) (*Room, error) {
	if creator.SessionID == "" {
		creator.SessionID = uuid.NewString()
	}

	for attempt := 0; attempt < codeAttempts; attempt++ {
		code := ""
		if visibility == domain.VisibilityPrivate {
			generated, err := generateJoinCode()
			if err != nil {
				return nil, fmt.Errorf("generate join code: %w", err)
			}
			code = generated
		}
		room := newRoom(uuid.NewString(), name, visibility, code, totalQuestions, creator)
		err := c.registry.Insert(room)
		if err == nil {
			return room, nil
		}
		if err != domain.ErrCodeInUse {
			return nil, err
		}
	}
	return nil, fmt.Errorf("could not allocate a unique join code after %d attempts", codeAttempts)
}

// Room resolves a room by id.
func (c *Coordinator) Room(roomID string) (*Room, error) {
	room, ok := c.registry.Get(roomID)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

// RoomByCode resolves a private room by join code.
func (c *Coordinator) RoomByCode(code string) (*Room, error) {
	room, ok := c.registry.GetByCode(code)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

// Join appends a player to a lobby-phase room.
func (c *Coordinator) Join(roomID string, player *domain.SessionPlayer) error {
	room, err := c.Room(roomID)
	if err != nil {
		return err
	}
	if player.SessionID == "" {
		player.SessionID = uuid.NewString()
	}
	return room.join(player)
}

// BindConnection attaches a live connection to a previously joined session.
// Until this happens the player cannot act in rounds.
func (c *Coordinator) BindConnection(roomID, sessionID, connectionID string) error {
	room, err := c.Room(roomID)
	if err != nil {
		return err
	}
	return room.bindConnection(sessionID, connectionID)
}

// SetReady toggles a player's lobby ready flag.
func (c *Coordinator) SetReady(roomID, sessionID string, ready bool) error {
	room, err := c.Room(roomID)
	if err != nil {
		return err
	}
	return room.setReady(sessionID, ready)
}

// AddTopic adds a topic to the lobby selection.
func (c *Coordinator) AddTopic(roomID, topic string) error {
	room, err := c.Room(roomID)
	if err != nil {
		return err
	}
	return room.addTopic(topic)
}

// RemoveTopic drops a topic from the lobby selection.
func (c *Coordinator) RemoveTopic(roomID, topic string) error {
	room, err := c.Room(roomID)
	if err != nil {
		return err
	}
	return room.removeTopic(topic)
}

// ListTopics exposes the content provider's topic list to the gateway.
func (c *Coordinator) ListTopics(ctx context.Context) ([]string, error) {
	return c.content.ListTopics(ctx)
}

// StartGame validates the owner/readiness/topic guards, fetches the game's
// questions and moves the room out of the lobby. The question fetch happens
// outside the room lock; a racing second start loses on the phase recheck.
func (c *Coordinator) StartGame(ctx context.Context, roomID, sessionID string) error {
	room, err := c.Room(roomID)
	if err != nil {
		return err
	}
	topics, err := room.ensureStartable(sessionID)
	if err != nil {
		return err
	}
	questions, err := c.content.QuestionsForTopics(ctx, room.totalQuestions, topics)
	if err != nil {
		return fmt.Errorf("fetch questions: %w", err)
	}
	return room.start(questions)
}

// SelectRoundTopic lets the rotating chooser pick the next round's topic.
func (c *Coordinator) SelectRoundTopic(roomID, connectionID, topic string) error {
	room, err := c.Room(roomID)
	if err != nil {
		return err
	}
	return room.selectRoundTopic(connectionID, topic)
}

// SubmitFakeAnswer records a player's decoy, overwriting any earlier one.
func (c *Coordinator) SubmitFakeAnswer(roomID, connectionID, text string) error {
	room, err := c.Room(roomID)
	if err != nil {
		return err
	}
	return room.submitFakeAnswer(connectionID, text)
}

// AllFakeAnswersSubmitted reports whether every player's decoy is in.
func (c *Coordinator) AllFakeAnswersSubmitted(roomID string) bool {
	room, err := c.Room(roomID)
	if err != nil {
		return false
	}
	return room.allFakeAnswersSubmitted()
}

// FinishCollecting transitions to the choosing phase exactly once.
func (c *Coordinator) FinishCollecting(roomID string) error {
	room, err := c.Room(roomID)
	if err != nil {
		return err
	}
	return room.finishCollecting()
}

// BuildAnswerChoices returns the decoys plus the correct answer, freshly
// shuffled on every call. Only valid in the choosing phase.
func (c *Coordinator) BuildAnswerChoices(roomID string) ([]string, error) {
	room, err := c.Room(roomID)
	if err != nil {
		return nil, err
	}
	return room.buildAnswerChoices()
}

// SubmitChosenAnswer records a player's vote, overwriting any earlier one.
func (c *Coordinator) SubmitChosenAnswer(roomID, connectionID, answer string) error {
	room, err := c.Room(roomID)
	if err != nil {
		return err
	}
	return room.submitChosenAnswer(connectionID, answer)
}

// AllAnswersChosen reports whether every player has voted.
func (c *Coordinator) AllAnswersChosen(roomID string) bool {
	room, err := c.Room(roomID)
	if err != nil {
		return false
	}
	return room.allAnswersChosen()
}

// ScoreRound applies the round's scoring and shows the ranking, at most once.
func (c *Coordinator) ScoreRound(roomID string) error {
	room, err := c.Room(roomID)
	if err != nil {
		return err
	}
	return room.scoreRound()
}

// NextRound advances to the next question. Returns true when the game ended.
func (c *Coordinator) NextRound(roomID string) (bool, error) {
	room, err := c.Room(roomID)
	if err != nil {
		return false, err
	}
	return room.nextRound()
}

// Snapshot produces the client-visible projection of the room.
func (c *Coordinator) Snapshot(roomID string) (domain.GameSnapshot, error) {
	room, err := c.Room(roomID)
	if err != nil {
		return domain.GameSnapshot{}, err
	}
	return room.snapshot(), nil
}

// SaveGameSession persists final scores, ranks and experience for logged-in
// players. One-shot: the room's saved flag is checked-and-set under its lock
// before any persistence starts. One player's failure never blocks the rest.
func (c *Coordinator) SaveGameSession(ctx context.Context, roomID string) error {
	room, err := c.Room(roomID)
	if err != nil {
		return err
	}
	meta, ranked, err := room.beginSave()
	if err != nil {
		return err
	}

	sessionID, err := c.results.RecordGameSession(ctx, meta)
	if err != nil {
		return fmt.Errorf("record game session: %w", err)
	}
	for _, p := range ranked {
		if p.AccountID == nil {
			continue // guests are scored in-memory only
		}
		if err := c.results.RecordGameResult(ctx, sessionID, *p.AccountID, p.Score, p.Rank); err != nil {
			log.Printf("room %s: record result for account %d: %v", roomID, *p.AccountID, err)
			continue
		}
		if err := c.results.AddExperience(ctx, *p.AccountID, p.Score); err != nil {
			log.Printf("room %s: add experience for account %d: %v", roomID, *p.AccountID, err)
		}
	}
	return nil
}

// generateJoinCode builds a 6-digit numeric code for private rooms. Bytes of
// 250 and above are rejected so every digit is equally likely.
func generateJoinCode() (string, error) {
	const digits = "0123456789"
	code := make([]byte, 6)
	buf := make([]byte, 1)
	for i := 0; i < len(code); {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		if buf[0] >= 250 {
			continue
		}
		code[i] = digits[buf[0]%10]
		i++
	}
	return string(code), nil
}
