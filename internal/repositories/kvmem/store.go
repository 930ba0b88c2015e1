package kvmem

import (
	"context"
	"sync"

	portsrepo "github.com/openlancer/payments-backend/internal/core/ports/repositories"
)

// Store is an in-memory KVStore. It backs tests and deployments that do not
// need overrides to survive a restart.
type Store struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewStore() *Store {
	return &Store{data: make(map[string]string)}
}

var _ portsrepo.KVStore = (*Store)(nil)

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[key]
	return value, ok, nil
}

func (s *Store) Set(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}
