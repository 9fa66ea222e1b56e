package httpapi

import (
	"errors"
	"net/http"
	"time"

	"swooche-router/internal/calls"
	"swooche-router/internal/observe"
	"swooche-router/internal/presence"
	"swooche-router/internal/routing"
	"swooche-router/internal/voicetoken"
	"swooche-router/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Tokens   *voicetoken.Issuer
	Routes   *routing.Table
	Presence *presence.Service
	CallLog  calls.Repository
	Metrics  *observe.Metrics
}

// Token serves GET /token.
//
// The identity defaults to the deployment's configured operator. An optional
// identity query parameter is honored only when it names a configured route
// target; anything else falls back to the default rather than erroring, so
// token issuance always succeeds for a valid deployment.
func (h Handlers) Token(c *gin.Context) {
	if h.Tokens == nil || h.Routes == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuer not configured"})
		return
	}

	identity := h.Routes.DefaultIdentity()
	if q := c.Query("identity"); q != "" && h.Routes.KnownIdentity(q) {
		identity = q
	}

	tok, err := h.Tokens.Issue(identity)
	if err != nil {
		if errors.Is(err, voicetoken.ErrConfiguration) {
			logger.FromGin(c).Error("voice token credentials missing")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token signing not configured"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	if h.Metrics != nil {
		h.Metrics.TokensIssued.Inc()
	}
	c.JSON(http.StatusOK, tok)
}

type agentStatusRequest struct {
	Identity string `json:"identity"`
	Status   string `json:"status"`
}

// AgentStatus serves POST /agent/status.
func (h Handlers) AgentStatus(c *gin.Context) {
	if h.Presence == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "presence not configured"})
		return
	}

	var req agentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "identity and status required"})
		return
	}

	err := h.Presence.Report(c.Request.Context(), req.Identity, presence.Status(req.Status))
	if err != nil {
		if errors.Is(err, presence.ErrValidation) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.FromGin(c).Error("presence store write failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "presence update failed"})
		return
	}
	c.Status(http.StatusOK)
}

// CallsReport serves GET /reports/calls?from=RFC3339&to=RFC3339.
// Defaults to the trailing 24 hours.
func (h Handlers) CallsReport(c *gin.Context) {
	if h.CallLog == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call log not configured"})
		return
	}

	to := time.Now().UTC()
	from := to.Add(-24 * time.Hour)
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
			return
		}
		to = t
	}

	sum, err := calls.Summarize(c.Request.Context(), h.CallLog, from, to)
	if err != nil {
		if errors.Is(err, calls.ErrInvalidRange) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be after from"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, sum)
}
