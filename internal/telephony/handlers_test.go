package telephony

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"swooche-router/internal/calls"
	"swooche-router/internal/notify"
	"swooche-router/internal/routing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(h Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/voice", h.HandleInboundCall)
	r.POST("/call-ended", h.HandleCallEnded)
	return r
}

func timeRangeAll() (time.Time, time.Time) {
	return time.Unix(0, 0), time.Now().Add(time.Hour)
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleInboundCall_BridgesToConfiguredIdentity(t *testing.T) {
	h := Handlers{Routes: routing.NewTable("Shakeel"), Notice: "Heads up.", PauseSeconds: 1}
	r := newTestRouter(h)

	w := postForm(r, "/voice", url.Values{"To": {"+15551234567"}, "From": {"+15550001111"}, "CallSid": {"CA123"}})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/xml") {
		t.Fatalf("expected xml content type, got %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<Client>Shakeel</Client>") {
		t.Fatalf("expected dial-to-client markup:\n%s", body)
	}

	// Identity is independent of the dialed number.
	w = postForm(r, "/voice", url.Values{"To": {"+19998887777"}})
	if !strings.Contains(w.Body.String(), "<Client>Shakeel</Client>") {
		t.Fatalf("expected same identity for any To value")
	}
}

type failFirstSMS struct {
	sent []string
}

func (f *failFirstSMS) SendSMS(ctx context.Context, to, body string) error {
	if to == "+15551234567" {
		return errors.New("carrier rejected")
	}
	f.sent = append(f.sent, to)
	return nil
}

func TestHandleCallEnded_PartialNotificationFailureStill200(t *testing.T) {
	sms := &failFirstSMS{}
	repo := calls.NewMemoryRepo()
	h := Handlers{
		Notifier: notify.NewNotifier(sms, nil, nil, nil),
		CallLog:  repo,
	}
	r := newTestRouter(h)

	w := postForm(r, "/call-ended", url.Values{
		"From":         {"+15551234567"},
		"To":           {"+15557654321"},
		"CallSid":      {"CA9"},
		"CallStatus":   {"completed"},
		"CallDuration": {"42"},
		"RecordingUrl": {"https://api.twilio.example/rec/CA9"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(sms.sent) != 1 || sms.sent[0] != "+15557654321" {
		t.Fatalf("expected surviving notification to To, got %v", sms.sent)
	}
}

func TestHandleCallEnded_RecordsCall(t *testing.T) {
	repo := calls.NewMemoryRepo()
	h := Handlers{CallLog: repo}
	r := newTestRouter(h)

	w := postForm(r, "/call-ended", url.Values{
		"From":         {"+15551234567"},
		"To":           {"+15557654321"},
		"CallSid":      {"CA10"},
		"CallStatus":   {"no-answer"},
		"CallDuration": {"0"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	from, to := timeRangeAll()
	all, err := repo.List(context.Background(), from, to)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 record, got %d", len(all))
	}
	if all[0].Status != calls.CallStatusNoAnswer || all[0].ProviderCallID != "CA10" {
		t.Fatalf("unexpected record: %+v", all[0])
	}
}
