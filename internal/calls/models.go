package calls

import "time"

// Call is one completed (or otherwise terminal) call as reported by the
// carrier's post-call webhook.
//
// Provider-specific identifiers (Twilio CallSid) live in ProviderCallID; the
// domain model stays provider-agnostic.
type Call struct {
	ID             string `json:"id" db:"id"`
	ProviderCallID string `json:"provider_call_id,omitempty" db:"provider_call_id"`

	From string `json:"from" db:"from_number"`
	To   string `json:"to" db:"to_number"`

	Status CallStatus `json:"status" db:"status"`

	DurationSeconds int `json:"duration" db:"duration"`

	RecordingURL string `json:"recording_url,omitempty" db:"recording_url"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CallStatus string

const (
	CallStatusCompleted CallStatus = "completed"
	CallStatusFailed    CallStatus = "failed"
	CallStatusNoAnswer  CallStatus = "no_answer"
	CallStatusBusy      CallStatus = "busy"
	CallStatusCanceled  CallStatus = "canceled"
)

// FromProviderStatus normalizes carrier webhook status strings.
func FromProviderStatus(s string) CallStatus {
	switch s {
	case "completed":
		return CallStatusCompleted
	case "no-answer":
		return CallStatusNoAnswer
	case "busy":
		return CallStatusBusy
	case "canceled":
		return CallStatusCanceled
	case "failed":
		return CallStatusFailed
	default:
		// Unknown terminal states count as completed so duration still tallies.
		return CallStatusCompleted
	}
}
