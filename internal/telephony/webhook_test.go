package telephony

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseInboundCall(t *testing.T) {
	body := strings.NewReader("CallSid=CA123&From=%2B15551234567&To=%2B15557654321&CallStatus=ringing")
	r := httptest.NewRequest(http.MethodPost, "/voice", body)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	form, err := ParseInboundCall(r)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if form.CallSid != "CA123" {
		t.Fatalf("expected CallSid, got %q", form.CallSid)
	}
	if form.From != "+15551234567" || form.To != "+15557654321" {
		t.Fatalf("unexpected from/to: %q %q", form.From, form.To)
	}
}

func TestParseCallEnded(t *testing.T) {
	body := strings.NewReader("CallSid=CA9&From=%2B1555&To=%2B1666&CallStatus=completed&CallDuration=42&RecordingUrl=https%3A%2F%2Frec%2FCA9")
	r := httptest.NewRequest(http.MethodPost, "/call-ended", body)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	form, err := ParseCallEnded(r)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if form.CallDuration != 42 {
		t.Fatalf("expected duration parsed, got %d", form.CallDuration)
	}
	if form.RecordingURL != "https://rec/CA9" {
		t.Fatalf("unexpected recording url %q", form.RecordingURL)
	}
}
