// Package notification is the out-of-band delivery seam for raw tokens.
// Actual mail transport lives outside this service; LogSender is the
// default wiring.
package notification

import (
	"context"
	"log/slog"
)

// Sender delivers a message carrying a token link to a recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender writes the message to the structured log instead of delivering
// it.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a log-backed sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message.
func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.logger.Info("outbound notification", "to", to, "subject", subject, "body", body)
	return nil
}
