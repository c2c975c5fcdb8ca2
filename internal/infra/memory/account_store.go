package memory

import (
	"context"
	"sync"

	"fakeout-service/internal/domain"
)

// AccountStore holds accounts in memory for tests and database-less runs.
type AccountStore struct {
	mu       sync.RWMutex
	nextID   int64
	accounts map[int64]domain.Account
}

func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[int64]domain.Account)}
}

// Put registers an account and returns its id.
func (s *AccountStore) Put(account domain.Account) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if account.ID == 0 {
		s.nextID++
		account.ID = s.nextID
	}
	s.accounts[account.ID] = account
	return account.ID
}

func (s *AccountStore) GetAccount(_ context.Context, id int64) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &account, nil
}
