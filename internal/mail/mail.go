// Package mail abstracts outbound email; delivery transport is an
// external collaborator, so the default implementation only logs.
package mail

import "log/slog"

// Mailer sends a message to a single recipient.
type Mailer interface {
	Send(to, subject, body string) error
}

// LogMailer writes outbound mail to the structured log. Useful for
// development and tests; tokens appear in the log instead of an inbox.
type LogMailer struct{}

// Send implements Mailer.
func (LogMailer) Send(to, subject, body string) error {
	slog.Info("outbound mail", "to", to, "subject", subject, "body", body)
	return nil
}
