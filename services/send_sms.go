package services

import (
	"fmt"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/cockroach-creatives/studio-backend/config"
	"github.com/cockroach-creatives/studio-backend/errs"
)

// Texter sends SMS alerts through Twilio.
type Texter struct {
	client *twilio.RestClient
	from   string
	to     string
}

// NewTexterFromConfig builds a Texter from TWILIO_ACCOUNT_SID,
// TWILIO_AUTH_TOKEN, TWILIO_FROM_NUMBER and TWILIO_ALERT_NUMBER. Returns
// (nil, nil) when the account SID is unset so SMS alerts stay optional.
func NewTexterFromConfig(cfg map[string]string) (*Texter, error) {
	accountSID := config.GetString(cfg, "TWILIO_ACCOUNT_SID", "")
	if accountSID == "" {
		return nil, nil
	}
	authToken := config.GetString(cfg, "TWILIO_AUTH_TOKEN", "")
	if authToken == "" {
		return nil, errs.NewConfigError("TWILIO_AUTH_TOKEN", nil)
	}
	from := config.GetString(cfg, "TWILIO_FROM_NUMBER", "")
	if from == "" {
		return nil, errs.NewConfigError("TWILIO_FROM_NUMBER", nil)
	}
	to := config.GetString(cfg, "TWILIO_ALERT_NUMBER", "")
	if to == "" {
		return nil, errs.NewConfigError("TWILIO_ALERT_NUMBER", nil)
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &Texter{client: client, from: from, to: to}, nil
}

// Send texts the configured alert number.
func (t *Texter) Send(body string) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(t.to)
	params.SetFrom(t.from)
	params.SetBody(body)

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return errs.NewRemoteServiceError("twilio", fmt.Errorf("create message: %w", err))
	}
	return nil
}
