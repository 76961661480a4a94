package store

import (
	"sync"

	"promptifie/pkg/domain"
)

// MemoryStore keeps accounts and generations in memory. Test double for
// GormStore; single instance only.
type MemoryStore struct {
	mu          sync.Mutex
	accounts    map[string]domain.Account // keyed by email
	generations []domain.Generation
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]domain.Account)}
}

// SaveAccount registers or updates an account.
func (s *MemoryStore) SaveAccount(a domain.Account) error {
	s.mu.Lock()
	s.accounts[a.Email] = a
	s.mu.Unlock()
	return nil
}

// HasAccountEmail checks if email exists.
func (s *MemoryStore) HasAccountEmail(email string) (bool, error) {
	s.mu.Lock()
	_, ok := s.accounts[email]
	s.mu.Unlock()
	return ok, nil
}

// GetAccountByEmail looks up an account by email.
func (s *MemoryStore) GetAccountByEmail(email string) (domain.Account, bool, error) {
	s.mu.Lock()
	account, ok := s.accounts[email]
	s.mu.Unlock()
	return account, ok, nil
}

// AccountCount returns the number of registered accounts.
func (s *MemoryStore) AccountCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts), nil
}

// RecordGeneration appends one audit-log entry.
func (s *MemoryStore) RecordGeneration(g domain.Generation) error {
	s.mu.Lock()
	s.generations = append(s.generations, g)
	s.mu.Unlock()
	return nil
}

// ListGenerationsByEmail returns recent generations, newest first.
func (s *MemoryStore) ListGenerationsByEmail(email string, limit int) ([]domain.Generation, error) {
	if limit <= 0 {
		limit = 100
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Generation, 0, limit)
	for i := len(s.generations) - 1; i >= 0 && len(out) < limit; i-- {
		if s.generations[i].Email == email {
			out = append(out, s.generations[i])
		}
	}
	return out, nil
}
