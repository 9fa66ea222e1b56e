package telephony

import (
	"net/http"
	"strconv"
	"strings"
)

// Twilio posts voice webhooks as application/x-www-form-urlencoded.
// Only the fields the router consumes are captured.

// InboundCallForm is the subset of the /voice webhook payload we care about.
type InboundCallForm struct {
	CallSid    string
	AccountSid string
	From       string
	To         string
	CallStatus string
}

func ParseInboundCall(r *http.Request) (InboundCallForm, error) {
	if err := r.ParseForm(); err != nil {
		return InboundCallForm{}, err
	}
	return InboundCallForm{
		CallSid:    r.PostFormValue("CallSid"),
		AccountSid: r.PostFormValue("AccountSid"),
		From:       normalizePhone(r.PostFormValue("From")),
		To:         normalizePhone(r.PostFormValue("To")),
		CallStatus: r.PostFormValue("CallStatus"),
	}, nil
}

// CallEndedForm is the subset of the /call-ended webhook payload we care about.
type CallEndedForm struct {
	CallSid      string
	From         string
	To           string
	CallStatus   string
	CallDuration int
	RecordingURL string
}

func ParseCallEnded(r *http.Request) (CallEndedForm, error) {
	if err := r.ParseForm(); err != nil {
		return CallEndedForm{}, err
	}
	dur, _ := strconv.Atoi(r.PostFormValue("CallDuration"))
	return CallEndedForm{
		CallSid:      r.PostFormValue("CallSid"),
		From:         normalizePhone(r.PostFormValue("From")),
		To:           normalizePhone(r.PostFormValue("To")),
		CallStatus:   r.PostFormValue("CallStatus"),
		CallDuration: dur,
		RecordingURL: strings.TrimSpace(r.PostFormValue("RecordingUrl")),
	}, nil
}

func normalizePhone(s string) string {
	// Twilio sometimes sends "anonymous" or empty; keep as-is.
	return strings.TrimSpace(s)
}
