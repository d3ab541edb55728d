package notifications

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/you/phoneauthsvc/domain"
)

// TwilioGateway implements domain.SMSGateway
type TwilioGateway struct {
	client     *twilio.RestClient
	fromNumber string
	logger     *zerolog.Logger
}

// NewTwilioGateway creates a new Twilio SMS gateway
func NewTwilioGateway(accountSID, authToken, fromNumber string, logger *zerolog.Logger) domain.SMSGateway {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioGateway{
		client:     client,
		fromNumber: fromNumber,
		logger:     logger,
	}
}

// Send implements domain.SMSGateway
func (t *TwilioGateway) Send(to, message string) error {
	// Without a configured sender the gateway runs in dry-run mode so local
	// environments work without Twilio credentials.
	if t.fromNumber == "" {
		t.logger.Info().Str("to", to).Msg("sms dry-run, no sender configured")
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.fromNumber)
	params.SetBody(message)

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGatewayFailure, err)
	}

	return nil
}
