package memory

import (
	"context"
	"sync"

	"fakeout-service/internal/domain"
)

// GameResult is one persisted participant row, kept in memory.
type GameResult struct {
	GameSessionID int64
	AccountID     int64
	FinalScore    int
	FinalRank     int
}

// ResultStore keeps game results in memory. It backs the server when no
// database is configured and doubles as the result sink in tests.
type ResultStore struct {
	mu       sync.Mutex
	nextID   int64
	Sessions map[int64]domain.GameSessionMeta
	Results  []GameResult
	Xp       map[int64]int
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		Sessions: make(map[int64]domain.GameSessionMeta),
		Xp:       make(map[int64]int),
	}
}

func (s *ResultStore) RecordGameSession(_ context.Context, meta domain.GameSessionMeta) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.Sessions[s.nextID] = meta
	return s.nextID, nil
}

// SessionCount reports how many finished games were recorded.
func (s *ResultStore) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Sessions)
}

func (s *ResultStore) RecordGameResult(_ context.Context, gameSessionID, accountID int64, finalScore, finalRank int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Results = append(s.Results, GameResult{
		GameSessionID: gameSessionID,
		AccountID:     accountID,
		FinalScore:    finalScore,
		FinalRank:     finalRank,
	})
	return nil
}

func (s *ResultStore) AddExperience(_ context.Context, accountID int64, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Xp[accountID] += amount
	return nil
}
