// Package mailer delivers out-of-band notifications, currently password
// reset instructions. Delivery is an external collaborator: callers must
// treat a send failure as fatal for the operation that triggered it.
package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Mailer sends a plain-text message to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes messages to the log instead of sending them. Used in
// development when no SMTP host is configured.
type LogMailer struct {
	Logger *logrus.Logger
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.Logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Infof("mail (not sent): %s", body)
	return nil
}
