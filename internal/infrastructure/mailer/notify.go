package mailer

import (
	"context"
	"fmt"
	"time"
)

// Notifier sends operator alerts when a report run fails.
type Notifier struct {
	mailer   Mailer
	operator string
}

// NewNotifier creates a Notifier for the configured operator address.
func NewNotifier(mailer Mailer, operator string) *Notifier {
	return &Notifier{mailer: mailer, operator: operator}
}

// NotifyError emails the operator about a failed run step. A notifier
// without an operator address is a no-op so failures in development don't
// need mail plumbing.
func (n *Notifier) NotifyError(ctx context.Context, step string, runErr error) error {
	if n == nil || n.operator == "" {
		return nil
	}

	msg := &Message{
		To:      []string{n.operator},
		Subject: fmt.Sprintf("Report run failed: %s", step),
		Body: fmt.Sprintf("The %s step failed at %s.\n\nError:\n%v\n",
			step, time.Now().Format(time.RFC1123), runErr),
	}

	return n.mailer.Send(ctx, msg)
}
