package softphone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"swooche-router/internal/observe"
	"swooche-router/internal/presence"
	"swooche-router/internal/voicetoken"
)

// RouterClient talks to the routing service's HTTP API. It serves a session
// as both its TokenSource (GET /token) and its PresenceReporter
// (POST /agent/status).
type RouterClient struct {
	BaseURL  string
	Identity string
	HTTP     *http.Client
	Logger   *slog.Logger
	Metrics  *observe.Metrics
}

func NewRouterClient(baseURL, identity string, log *slog.Logger, metrics *observe.Metrics) *RouterClient {
	if log == nil {
		log = slog.Default()
	}
	if metrics == nil {
		metrics = observe.NewNopMetrics()
	}
	return &RouterClient{
		BaseURL:  baseURL,
		Identity: identity,
		HTTP:     &http.Client{Timeout: 10 * time.Second},
		Logger:   log.With("component", "router_client"),
		Metrics:  metrics,
	}
}

// Fetch requests a voice access token. The router decides the effective
// identity; unknown identities fall back to the default agent.
func (rc *RouterClient) Fetch(ctx context.Context) (voicetoken.VoiceToken, error) {
	u := rc.BaseURL + "/token"
	if rc.Identity != "" {
		u += "?identity=" + url.QueryEscape(rc.Identity)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return voicetoken.VoiceToken{}, fmt.Errorf("building token request: %w", err)
	}

	resp, err := rc.HTTP.Do(req)
	if err != nil {
		return voicetoken.VoiceToken{}, fmt.Errorf("fetching token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return voicetoken.VoiceToken{}, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, body)
	}

	var tok voicetoken.VoiceToken
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return voicetoken.VoiceToken{}, fmt.Errorf("decoding token response: %w", err)
	}
	return tok, nil
}

// Report delivers a presence update in the background. Failures are logged
// and counted, never surfaced: presence is advisory and the session must not
// block or break on it.
func (rc *RouterClient) Report(ctx context.Context, identity string, status presence.Status) {
	payload, err := json.Marshal(map[string]string{
		"identity": identity,
		"status":   string(status),
	})
	if err != nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			rc.BaseURL+"/agent/status", bytes.NewReader(payload))
		if err != nil {
			rc.reportFailed(identity, status, err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := rc.HTTP.Do(req)
		if err != nil {
			rc.reportFailed(identity, status, err)
			return
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, io.LimitReader(resp.Body, 512))

		if resp.StatusCode != http.StatusOK {
			rc.reportFailed(identity, status, fmt.Errorf("status endpoint returned %d", resp.StatusCode))
		}
	}()
}

func (rc *RouterClient) reportFailed(identity string, status presence.Status, err error) {
	rc.Logger.Warn("presence report failed",
		"identity", identity, "status", string(status), "error", err)
	rc.Metrics.PresenceReportFailures.Inc()
}
