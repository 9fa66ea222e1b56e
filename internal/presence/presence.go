package presence

import "errors"

// Status is an agent's current availability for receiving calls.
//
// Presence is a soft real-time signal: the store holds the most recently
// reported status only, with no history and no durability guarantee.
type Status string

const (
	StatusReady   Status = "ready"
	StatusOffline Status = "offline"
	StatusInCall  Status = "in-call"
	StatusError   Status = "error"
)

func (s Status) Valid() bool {
	switch s {
	case StatusReady, StatusOffline, StatusInCall, StatusError:
		return true
	default:
		return false
	}
}

// Record is one agent's presence entry. Exactly one record exists per
// identity at any time; writes are last-writer-wins.
type Record struct {
	Identity string `json:"identity"`
	Status   Status `json:"status"`
}

// ErrValidation marks a malformed presence report (empty identity or a
// status outside the enumerated set). Handlers surface it as a 400.
var ErrValidation = errors.New("presence: invalid report")
