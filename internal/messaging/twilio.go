package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"photo_studio/internal/lib/logger/sl"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

type TwilioSender struct {
	log          *slog.Logger
	api          messageCreator
	smsFrom      string
	whatsAppFrom string
}

func NewTwilioSender(log *slog.Logger, accountSID, authToken, smsFrom, whatsAppFrom string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return newTwilioSender(log, client.Api, smsFrom, whatsAppFrom)
}

func newTwilioSender(log *slog.Logger, api messageCreator, smsFrom, whatsAppFrom string) *TwilioSender {
	return &TwilioSender{
		log:          log,
		api:          api,
		smsFrom:      smsFrom,
		whatsAppFrom: whatsAppFrom,
	}
}

func (s *TwilioSender) Send(ctx context.Context, channel Channel, to, body string) error {
	const op = "messaging.TwilioSender.Send"

	log := s.log.With(
		slog.String("op", op),
		slog.String("channel", string(channel)),
	)

	var from string
	switch channel {
	case ChannelWhatsApp:
		if s.whatsAppFrom == "" {
			return fmt.Errorf("%s: %w", op, ErrChannelUnavailable)
		}
		from, to = "whatsapp:"+s.whatsAppFrom, "whatsapp:"+to
	case ChannelSMS:
		if s.smsFrom == "" {
			return fmt.Errorf("%s: %w", op, ErrChannelUnavailable)
		}
		from = s.smsFrom
	default:
		return fmt.Errorf("%s: unsupported channel %q", op, channel)
	}

	// the twilio client carries no context; honour cancellation before the call at least
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		log.Warn("twilio rejected message", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	if resp != nil && resp.Sid != nil {
		log.Debug("message queued", slog.String("sid", *resp.Sid))
	}

	return nil
}
