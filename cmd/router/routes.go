package main

import (
	"net/http"

	"swooche-router/internal/calls"
	"swooche-router/internal/config"
	"swooche-router/internal/httpapi"
	"swooche-router/internal/notify"
	"swooche-router/internal/observe"
	"swooche-router/internal/presence"
	"swooche-router/internal/routing"
	"swooche-router/internal/telephony"
	"swooche-router/internal/voicetoken"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type deps struct {
	cfg      config.Config
	reg      *prometheus.Registry
	metrics  *observe.Metrics
	presence *presence.Service
	routes   *routing.Table
	issuer   *voicetoken.Issuer
	notifier *notify.Notifier
	callLog  calls.Repository
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, d deps) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.reg, promhttp.HandlerOpts{})))

	// Carrier webhooks. Signature validation is active whenever the auth
	// token is configured; with an empty token the middleware passes
	// everything through, which is only acceptable in development.
	webhooks := r.Group("/")
	webhooks.Use(telephony.RequireTwilioSignature(d.cfg.Twilio.AuthToken, d.cfg.App.PublicBaseURL))
	{
		h := telephony.Handlers{
			Routes:       d.routes,
			Notice:       d.cfg.Agent.CallNotice,
			PauseSeconds: 1,
			Notifier:     d.notifier,
			CallLog:      d.callLog,
			Metrics:      d.metrics,
		}
		webhooks.POST("/voice", h.HandleInboundCall)
		webhooks.POST("/call-ended", h.HandleCallEnded)
	}

	// Client-facing API, consumed by the softphone front ends.
	{
		h := httpapi.Handlers{
			Tokens:   d.issuer,
			Routes:   d.routes,
			Presence: d.presence,
			CallLog:  d.callLog,
			Metrics:  d.metrics,
		}
		r.GET("/token", h.Token)
		r.POST("/agent/status", h.AgentStatus)
		r.GET("/reports/calls", h.CallsReport)
	}
}
