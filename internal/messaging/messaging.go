// Package messaging delivers one-time codes and notifications to clients over WhatsApp
// with an SMS fallback.
package messaging

import (
	"context"
	"errors"
)

type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelSMS      Channel = "sms"
)

var (
	ErrChannelUnavailable = errors.New("messaging: channel not configured")
	ErrInvalidRecipient   = errors.New("messaging: invalid recipient")
)

// Sender pushes a single message over one channel. Recipients are E.164 numbers.
type Sender interface {
	Send(ctx context.Context, channel Channel, to, body string) error
}
