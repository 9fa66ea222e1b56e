package presence

import (
	"context"
	"sync"
)

// Store is the persistence contract for agent presence.
//
// Writes overwrite unconditionally; no ordering is guaranteed across
// concurrent reporters for the same identity. Get exists for in-process
// consumers and tests; no HTTP route exposes reads.
type Store interface {
	Set(ctx context.Context, identity string, status Status) error
	Get(ctx context.Context, identity string) (Status, bool, error)
}

// MemoryStore is the process-local store used for tests and single-instance
// deployments. Contents are lost on restart, which is acceptable for a soft
// real-time signal.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Status
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]Status{}}
}

func (s *MemoryStore) Set(ctx context.Context, identity string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[identity] = status
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, identity string) (Status, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.entries[identity]
	return st, ok, nil
}
