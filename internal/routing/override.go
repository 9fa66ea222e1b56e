package routing

import (
	"strings"
	"sync"
	"time"
)

// OverrideSet holds temporary, expiry-based reroutes placed ahead of normal
// table lookup (e.g. an operator sending a number to a covering agent for an
// afternoon).
//
// Overrides are silent from the caller's perspective; callers must not be
// able to infer that one was used. Expired entries are treated as absent and
// lazily pruned.

type Override struct {
	Number    string
	Identity  string
	ExpiresAt time.Time
}

type OverrideSet struct {
	mu      sync.Mutex
	entries map[string]Override
}

func NewOverrideSet() *OverrideSet {
	return &OverrideSet{entries: map[string]Override{}}
}

// Put installs or replaces the override for a number.
// A zero or past expiry is rejected by doing nothing.
func (s *OverrideSet) Put(o Override) {
	o.Number = strings.TrimSpace(o.Number)
	o.Identity = strings.TrimSpace(o.Identity)
	if o.Number == "" || o.Identity == "" || !o.ExpiresAt.After(time.Now()) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[o.Number] = o
}

// Clear removes any override for the number.
func (s *OverrideSet) Clear(number string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, strings.TrimSpace(number))
}

// Active returns the override identity for a number if one is unexpired.
func (s *OverrideSet) Active(number string, now time.Time) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.entries[number]
	if !ok {
		return "", false
	}
	if !o.ExpiresAt.After(now) {
		delete(s.entries, number)
		return "", false
	}
	return o.Identity, true
}
