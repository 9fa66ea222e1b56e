package observe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects the router's operational counters.
//
// Presence reporting and post-call notification are both fire-and-forget by
// contract; these counters are how operators observe repeated failures
// without changing the non-blocking behavior.
type Metrics struct {
	// PresenceUpdates counts accepted presence reports.
	// Labels: status (ready|offline|in-call|error)
	PresenceUpdates *prometheus.CounterVec

	// PresenceRejected counts presence reports failing validation.
	PresenceRejected prometheus.Counter

	// PresenceReportFailures counts client-side report attempts that failed
	// in transit (recorded by the softphone HTTP reporter).
	PresenceReportFailures prometheus.Counter

	// InboundCalls counts /voice webhooks by routing outcome.
	// Labels: outcome (connected|failed)
	InboundCalls *prometheus.CounterVec

	// TokensIssued counts voice token grants.
	TokensIssued prometheus.Counter

	// Notifications counts post-call SMS attempts.
	// Labels: result (sent|failed)
	Notifications *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PresenceUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "swooche_presence_updates_total",
			Help: "Accepted agent presence reports by status.",
		}, []string{"status"}),
		PresenceRejected: f.NewCounter(prometheus.CounterOpts{
			Name: "swooche_presence_rejected_total",
			Help: "Presence reports rejected by validation.",
		}),
		PresenceReportFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "swooche_presence_report_failures_total",
			Help: "Fire-and-forget presence report attempts that failed in transit.",
		}),
		InboundCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "swooche_inbound_calls_total",
			Help: "Inbound call webhooks by routing outcome.",
		}, []string{"outcome"}),
		TokensIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "swooche_voice_tokens_issued_total",
			Help: "Voice access tokens minted.",
		}),
		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "swooche_post_call_notifications_total",
			Help: "Post-call SMS attempts by result.",
		}, []string{"result"}),
	}
}

// NewNopMetrics returns metrics bound to a throwaway registry, for tests and
// for components that run without a metrics endpoint.
func NewNopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
