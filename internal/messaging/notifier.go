package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"photo_studio/internal/domain/models"
	"photo_studio/internal/lib/logger/sl"
	"photo_studio/internal/lib/phone"
	"photo_studio/internal/metrics"
)

// Notifier formats studio messages and delivers them, trying WhatsApp first and
// falling back to SMS.
type Notifier struct {
	log                *slog.Logger
	sender             Sender
	defaultCountryCode string
	studioName         string
	studioPhone        string
}

func NewNotifier(log *slog.Logger, sender Sender, defaultCountryCode, studioName, studioPhone string) *Notifier {
	return &Notifier{
		log:                log,
		sender:             sender,
		defaultCountryCode: defaultCountryCode,
		studioName:         studioName,
		studioPhone:        studioPhone,
	}
}

// Deliver sends body to the given number and reports the channel that accepted it.
// Errors from both channels are joined when every attempt failed.
func (n *Notifier) Deliver(ctx context.Context, to, body string) (Channel, error) {
	const op = "messaging.Notifier.Deliver"

	if !phone.Valid(to) {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidRecipient)
	}

	recipient := phone.ToE164(to, n.defaultCountryCode)

	log := n.log.With(
		slog.String("op", op),
		slog.String("to", recipient),
	)

	var errs []error
	for _, channel := range []Channel{ChannelWhatsApp, ChannelSMS} {
		err := n.sender.Send(ctx, channel, recipient, body)
		if err == nil {
			metrics.MessagesSent.WithLabelValues(string(channel), "ok").Inc()
			log.Info("message delivered", slog.String("channel", string(channel)))

			return channel, nil
		}

		metrics.MessagesSent.WithLabelValues(string(channel), "error").Inc()
		if !errors.Is(err, ErrChannelUnavailable) {
			log.Warn("channel failed", slog.String("channel", string(channel)), sl.Err(err))
		}
		errs = append(errs, err)

		if ctx.Err() != nil {
			break
		}
	}

	return "", fmt.Errorf("%s: %w", op, errors.Join(errs...))
}

func (n *Notifier) SendOTP(ctx context.Context, to, code string, ttl time.Duration) (Channel, error) {
	return n.Deliver(ctx, to, otpMessage(n.studioName, code, ttl))
}

func (n *Notifier) BookingConfirmation(ctx context.Context, b models.Booking) error {
	_, err := n.Deliver(ctx, b.Client.Phone, bookingConfirmationMessage(n.studioName, b))

	return err
}

// BookingAlert tells the studio about a new booking. It is a no-op when no studio
// phone is configured.
func (n *Notifier) BookingAlert(ctx context.Context, b models.Booking) error {
	if n.studioPhone == "" {
		return nil
	}

	_, err := n.Deliver(ctx, n.studioPhone, bookingAlertMessage(b))

	return err
}

func (n *Notifier) GalleryShared(ctx context.Context, g models.Gallery, url string) (Channel, error) {
	return n.Deliver(ctx, g.Client.Phone, gallerySharedMessage(n.studioName, g, url))
}
