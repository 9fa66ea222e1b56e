package notify

import (
	"sync"
	"time"
)

// Delivery is one notification attempt outcome.
// Err is empty for successful sends.
type Delivery struct {
	To             string    `json:"to"`
	ProviderCallID string    `json:"provider_call_id,omitempty"`
	At             time.Time `json:"at"`
	Err            string    `json:"err,omitempty"`
}

// DeliveryLog is an append-only, bounded in-memory record of notification
// attempts. It exists so repeated fire-and-forget failures are observable by
// operators; it is not a retry queue.
type DeliveryLog struct {
	mu      sync.Mutex
	max     int
	entries []Delivery
}

func NewDeliveryLog(max int) *DeliveryLog {
	if max <= 0 {
		max = 1024
	}
	return &DeliveryLog{max: max}
}

func (l *DeliveryLog) Append(d Delivery) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, d)
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
}

// Recent returns a copy of the most recent entries, newest last.
func (l *DeliveryLog) Recent(limit int) []Delivery {
	l.mu.Lock()
	defer l.mu.Unlock()
	if limit <= 0 || limit > len(l.entries) {
		limit = len(l.entries)
	}
	out := make([]Delivery, limit)
	copy(out, l.entries[len(l.entries)-limit:])
	return out
}
