package mailer

import (
	"context"
	"log/slog"
)

// Mailer delivers confirmation codes to users. Real transport lives
// behind this interface; the service only needs fire-and-forget sends.
type Mailer interface {
	SendConfirmationCode(ctx context.Context, email, code string) error
}

// LogMailer writes codes to the structured log instead of sending mail.
// Used in development and tests.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendConfirmationCode(ctx context.Context, email, code string) error {
	m.logger.Info("confirmation code issued",
		"email", email,
		"code", code,
	)
	return nil
}
