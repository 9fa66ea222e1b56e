package telephony

import (
	"net/http"
	"time"

	"swooche-router/internal/calls"
	"swooche-router/internal/notify"
	"swooche-router/internal/observe"
	"swooche-router/internal/routing"
	"swooche-router/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers converts carrier webhooks to internal types, delegates decisions
// to routing/notify, and writes TwiML or empty acknowledgements.
//
// No business logic here.
type Handlers struct {
	Routes *routing.Table

	// Notice is spoken to the caller before bridging; PauseSeconds follows it.
	Notice       string
	PauseSeconds int

	Notifier *notify.Notifier
	CallLog  calls.Repository
	Metrics  *observe.Metrics

	Now func() time.Time
}

func (h Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h Handlers) metrics() *observe.Metrics {
	if h.Metrics != nil {
		return h.Metrics
	}
	return observe.NewNopMetrics()
}

// HandleInboundCall serves POST /voice.
//
// The carrier blocks on this response before proceeding with signaling, so
// the handler is strictly request/response: resolve the identity, render the
// bridge instructions, return. No registration pre-check; if no device is
// registered under the identity, the dial fails carrier-side.
func (h Handlers) HandleInboundCall(c *gin.Context) {
	log := logger.FromGin(c)

	if h.Routes == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "route table not configured"})
		return
	}

	form, err := ParseInboundCall(c.Request)
	if err != nil {
		log.Warn("voice webhook parse failed", "err", err)
		h.metrics().InboundCalls.WithLabelValues("failed").Inc()
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}

	d, err := h.Routes.Resolve(c.Request.Context(), form.To)
	if err != nil {
		log.Error("inbound call routing failed", "to", form.To, "err", err)
		h.metrics().InboundCalls.WithLabelValues("failed").Inc()
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "routing failed"})
		return
	}

	twiml, err := RenderConnect(ConnectInstructions{
		Notice:         h.Notice,
		PauseSeconds:   h.PauseSeconds,
		ClientIdentity: d.Identity,
	})
	if err != nil {
		log.Error("twiml render failed", "err", err)
		h.metrics().InboundCalls.WithLabelValues("failed").Inc()
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "twiml failed"})
		return
	}

	log.Info("inbound call bridged", "call_sid", form.CallSid, "from", form.From, "to", form.To,
		"identity", d.Identity, "route_source", d.Source)
	h.metrics().InboundCalls.WithLabelValues("connected").Inc()

	c.Header("Content-Type", "application/xml")
	c.String(http.StatusOK, twiml)
}

// HandleCallEnded serves POST /call-ended.
//
// Recording the call and notifying the parties are both best-effort; the
// carrier always gets a 200 so it never retries or fails the call flow.
func (h Handlers) HandleCallEnded(c *gin.Context) {
	log := logger.FromGin(c)

	form, err := ParseCallEnded(c.Request)
	if err != nil {
		log.Warn("call-ended webhook parse failed", "err", err)
		c.Status(http.StatusOK)
		return
	}

	if h.CallLog != nil {
		rec := calls.Call{
			ProviderCallID:  form.CallSid,
			From:            form.From,
			To:              form.To,
			Status:          calls.FromProviderStatus(form.CallStatus),
			DurationSeconds: form.CallDuration,
			RecordingURL:    form.RecordingURL,
			CreatedAt:       h.now().UTC(),
		}
		if err := h.CallLog.Record(c.Request.Context(), rec); err != nil {
			log.Warn("call log write failed", "call_sid", form.CallSid, "err", err)
		}
	}

	if h.Notifier != nil {
		h.Notifier.OnCallEnded(c.Request.Context(), notify.CallEnded{
			ProviderCallID: form.CallSid,
			From:           form.From,
			To:             form.To,
			RecordingURL:   form.RecordingURL,
			Status:         form.CallStatus,
			DurationSec:    form.CallDuration,
		})
	}

	c.Status(http.StatusOK)
}
