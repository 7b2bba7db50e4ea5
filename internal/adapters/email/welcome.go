package email

import (
	"context"
	"fmt"
	"strings"
)

// WelcomeMailer sends a short welcome note to newly created users whose
// username is an email address. Usernames without an '@' are plain handles
// and are silently skipped.
type WelcomeMailer struct {
	sender Sender
	from   string
}

// NewWelcomeMailer creates a WelcomeMailer on top of any Sender.
func NewWelcomeMailer(sender Sender, from string) *WelcomeMailer {
	return &WelcomeMailer{sender: sender, from: from}
}

// SendWelcome delivers the welcome email.
// PRE: username is the new user's handle
// POST: Email sent when the handle is an address; no-op otherwise
func (m *WelcomeMailer) SendWelcome(ctx context.Context, username string) error {
	if !strings.Contains(username, "@") {
		return nil
	}
	_, err := m.sender.Send(ctx, SendRequest{
		To:      []string{username},
		From:    m.from,
		Subject: "Your advent calendar account",
		HTML: fmt.Sprintf(
			"<p>Hello,</p><p>An account for <strong>%s</strong> has been created. "+
				"Log in to start opening windows once December begins.</p>",
			username),
	})
	return err
}
