package presence

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"swooche-router/internal/observe"
)

// Service validates and applies presence reports.
//
// Reporting is best-effort from the client's perspective: clients fire and
// forget, so the only operator-visible signals are the log line and counter
// emitted here.
type Service struct {
	store   Store
	log     *slog.Logger
	metrics *observe.Metrics
}

func NewService(store Store, log *slog.Logger, metrics *observe.Metrics) *Service {
	if log == nil {
		log = slog.Default()
	}
	if metrics == nil {
		metrics = observe.NewNopMetrics()
	}
	return &Service{store: store, log: log, metrics: metrics}
}

// Report overwrites the identity's entry with the given status.
// Last writer wins; no sequencing across concurrent reporters.
func (s *Service) Report(ctx context.Context, identity string, status Status) error {
	if strings.TrimSpace(identity) == "" {
		s.metrics.PresenceRejected.Inc()
		return fmt.Errorf("%w: identity required", ErrValidation)
	}
	if !status.Valid() {
		s.metrics.PresenceRejected.Inc()
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	if err := s.store.Set(ctx, identity, status); err != nil {
		return err
	}
	s.log.Info("agent status updated", "identity", identity, "status", string(status))
	s.metrics.PresenceUpdates.WithLabelValues(string(status)).Inc()
	return nil
}

// Peek returns the current entry for an identity. Internal use only; presence
// has no external read endpoint.
func (s *Service) Peek(ctx context.Context, identity string) (Status, bool, error) {
	return s.store.Get(ctx, identity)
}
