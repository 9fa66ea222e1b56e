package notify

import (
	"context"
	"log/slog"
	"time"

	"swooche-router/internal/observe"
)

// SMSSender sends one text message. Implementations live at the provider
// boundary (Twilio REST) or in tests.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// CallEnded is the metadata the carrier posts when a call finishes.
type CallEnded struct {
	ProviderCallID string
	From           string
	To             string
	RecordingURL   string
	Status         string
	DurationSec    int
}

// Notifier fires follow-up SMS to both call parties after a call ends.
//
// Delivery is at-most-effort: each attempt is isolated, failures are logged,
// counted and recorded in the delivery log, and never propagated. The
// webhook handler always acknowledges the carrier regardless.
type Notifier struct {
	sms     SMSSender
	log     *slog.Logger
	metrics *observe.Metrics
	journal *DeliveryLog

	// Body builders are injectable so deployments can localize copy.
	CallerBody func(e CallEnded) string
	CalleeBody func(e CallEnded) string

	clock func() time.Time
}

func NewNotifier(sms SMSSender, log *slog.Logger, metrics *observe.Metrics, journal *DeliveryLog) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	if metrics == nil {
		metrics = observe.NewNopMetrics()
	}
	if journal == nil {
		journal = NewDeliveryLog(0)
	}
	return &Notifier{
		sms:        sms,
		log:        log,
		metrics:    metrics,
		journal:    journal,
		CallerBody: defaultCallerBody,
		CalleeBody: defaultCalleeBody,
		clock:      time.Now,
	}
}

func defaultCallerBody(e CallEnded) string {
	return "Thanks for calling Swooche. We'll follow up shortly."
}

func defaultCalleeBody(e CallEnded) string {
	return "You just finished a Swooche call with " + e.From + "."
}

// OnCallEnded performs up to two independent notification attempts and logs
// the recording location if present. It never returns an error.
func (n *Notifier) OnCallEnded(ctx context.Context, e CallEnded) {
	if e.RecordingURL != "" {
		n.log.Info("call recording available", "call_sid", e.ProviderCallID, "recording_url", e.RecordingURL)
	}

	if e.From != "" {
		n.attempt(ctx, e, e.From, n.CallerBody(e))
	}
	if e.To != "" {
		n.attempt(ctx, e, e.To, n.CalleeBody(e))
	}
}

func (n *Notifier) attempt(ctx context.Context, e CallEnded, to, body string) {
	err := n.sms.SendSMS(ctx, to, body)
	at := n.clock().UTC()
	if err != nil {
		n.log.Warn("post-call sms failed", "to", to, "call_sid", e.ProviderCallID, "err", err)
		n.metrics.Notifications.WithLabelValues("failed").Inc()
		n.journal.Append(Delivery{To: to, ProviderCallID: e.ProviderCallID, At: at, Err: err.Error()})
		return
	}
	n.metrics.Notifications.WithLabelValues("sent").Inc()
	n.journal.Append(Delivery{To: to, ProviderCallID: e.ProviderCallID, At: at})
}
