package messaging

import (
	"context"
	"log/slog"
)

// LogSender writes messages to the log instead of delivering them. Used when no
// provider credentials are configured. Bodies carry one-time codes, so they are only
// written when showBody is set.
type LogSender struct {
	log      *slog.Logger
	showBody bool
}

func NewLogSender(log *slog.Logger, showBody bool) *LogSender {
	return &LogSender{log: log, showBody: showBody}
}

func (s *LogSender) Send(_ context.Context, channel Channel, to, body string) error {
	attrs := []any{
		slog.String("channel", string(channel)),
		slog.String("to", to),
	}
	if s.showBody {
		attrs = append(attrs, slog.String("body", body))
	} else {
		attrs = append(attrs, slog.Int("body_len", len(body)))
	}

	s.log.Info("message not delivered, no provider configured", attrs...)

	return nil
}
