package routing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// Table resolves which agent identity an inbound call bridges to.
//
// Routing is resolved at call-arrival time: dialed number → agent identity,
// falling back to the default identity when no entry matches. This replaces
// a hardcoded single-operator identity without changing the synchronous
// request/response contract of the voice webhook.
//
// The table returns a decision only. No side effects (no presence reads, no
// provider calls): if the target identity has no registered device, the
// failure manifests at the carrier, not here.

type Decision struct {
	// Identity is the software client the carrier should dial.
	Identity string `json:"identity"`

	// Source is internal, for logs: override, route, or default.
	Source string `json:"source,omitempty"`
}

const (
	SourceOverride = "override"
	SourceRoute    = "route"
	SourceDefault  = "default"
)

var ErrNoDefaultIdentity = errors.New("routing: default identity required")

type Table struct {
	mu              sync.RWMutex
	routes          map[string]string
	defaultIdentity string

	overrides *OverrideSet
	now       func() time.Time
}

func NewTable(defaultIdentity string) *Table {
	return &Table{
		routes:          map[string]string{},
		defaultIdentity: strings.TrimSpace(defaultIdentity),
		overrides:       NewOverrideSet(),
		now:             time.Now,
	}
}

// SetRoute maps a dialed number (E.164) to an agent identity.
func (t *Table) SetRoute(number, identity string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes[strings.TrimSpace(number)] = strings.TrimSpace(identity)
}

// Overrides exposes the temporary override set for operator wiring.
func (t *Table) Overrides() *OverrideSet { return t.overrides }

// Resolve decides the bridge target for a dialed number.
// Priority: active override, then route entry, then default identity.
func (t *Table) Resolve(ctx context.Context, dialedNumber string) (Decision, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.defaultIdentity == "" {
		return Decision{}, ErrNoDefaultIdentity
	}

	dialedNumber = strings.TrimSpace(dialedNumber)

	if id, ok := t.overrides.Active(dialedNumber, t.now()); ok {
		return Decision{Identity: id, Source: SourceOverride}, nil
	}
	if id, ok := t.routes[dialedNumber]; ok && id != "" {
		return Decision{Identity: id, Source: SourceRoute}, nil
	}
	return Decision{Identity: t.defaultIdentity, Source: SourceDefault}, nil
}

// KnownIdentity reports whether identity is the default or a route target.
// The token endpoint uses this to keep token issuance scoped to configured
// operators.
func (t *Table) KnownIdentity(identity string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if identity == t.defaultIdentity {
		return true
	}
	for _, id := range t.routes {
		if id == identity {
			return true
		}
	}
	return false
}

func (t *Table) DefaultIdentity() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.defaultIdentity
}
