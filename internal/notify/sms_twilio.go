package notify

import (
	"context"
	"fmt"

	"swooche-router/internal/config"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioSMS sends messages through the Twilio REST API using the same API
// key pair that signs voice tokens.
type TwilioSMS struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSMS(cfg config.TwilioConfig) (*TwilioSMS, error) {
	if cfg.AccountSID == "" || cfg.APIKeySID == "" || cfg.APIKeySecret == "" {
		return nil, fmt.Errorf("notify: twilio credentials required")
	}
	if cfg.PhoneNumber == "" {
		return nil, fmt.Errorf("notify: sender phone number required")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   cfg.APIKeySID,
		Password:   cfg.APIKeySecret,
		AccountSid: cfg.AccountSID,
	})
	return &TwilioSMS{client: client, from: cfg.PhoneNumber}, nil
}

func (t *TwilioSMS) SendSMS(ctx context.Context, to, body string) error {
	params := &api.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	_, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("notify: twilio send to %s failed: %w", to, err)
	}
	return nil
}
