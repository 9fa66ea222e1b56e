package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"swooche-router/internal/config"
	"swooche-router/internal/presence"
	"swooche-router/internal/routing"
	"swooche-router/internal/voicetoken"

	"github.com/gin-gonic/gin"
)

func newAPI(h Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/token", h.Token)
	r.POST("/agent/status", h.AgentStatus)
	return r
}

func testIssuer() *voicetoken.Issuer {
	return voicetoken.NewIssuer(config.TwilioConfig{
		AccountSID:    "AC1",
		APIKeySID:     "SK1",
		APIKeySecret:  "s3cret",
		TwiMLAppSID:   "AP1",
		VoiceTokenTTL: time.Hour,
	})
}

func TestToken_ReturnsTokenForDefaultIdentity(t *testing.T) {
	h := Handlers{Tokens: testIssuer(), Routes: routing.NewTable("Shakeel")}
	r := newAPI(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/token", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token    string `json:"token"`
		Identity string `json:"identity"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if resp.Identity != "Shakeel" || resp.Token == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestToken_UnknownIdentityFallsBackToDefault(t *testing.T) {
	tbl := routing.NewTable("Shakeel")
	tbl.SetRoute("+1555", "Priya")
	h := Handlers{Tokens: testIssuer(), Routes: tbl}
	r := newAPI(h)

	for q, want := range map[string]string{"Priya": "Priya", "Mallory": "Shakeel"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/token?identity="+q, nil))
		var resp struct {
			Identity string `json:"identity"`
		}
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.Identity != want {
			t.Fatalf("for %q expected %q, got %q", q, want, resp.Identity)
		}
	}
}

func TestAgentStatus_WritesStore(t *testing.T) {
	store := presence.NewMemoryStore()
	h := Handlers{Presence: presence.NewService(store, nil, nil)}
	r := newAPI(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/agent/status", strings.NewReader(`{"identity":"Shakeel","status":"in-call"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	got, ok, _ := store.Get(context.Background(), "Shakeel")
	if !ok || got != presence.StatusInCall {
		t.Fatalf("expected in-call stored, got %q ok=%v", got, ok)
	}
}

func TestAgentStatus_RejectsBadPayloads(t *testing.T) {
	h := Handlers{Presence: presence.NewService(presence.NewMemoryStore(), nil, nil)}
	r := newAPI(h)

	for _, body := range []string{
		`{"identity":"Shakeel","status":"busy"}`,
		`{"identity":"","status":"ready"}`,
		`{"identity":123,"status":"ready"}`,
		`not json`,
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/agent/status", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, w.Code)
		}
	}
}
