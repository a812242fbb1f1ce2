package mailer

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrEmptyResponse is returned when the provider accepts the call but
	// hands back no message id.
	ErrEmptyResponse = errors.New("mailer: provider returned no message id")
	ErrNotConfigured = errors.New("mailer: provider is not configured")
)

// Message contains the data needed to send an email via an external provider.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

type Mailer interface {
	Send(ctx context.Context, msg Message) (SendResult, error)
}

// DisabledMailer fails every send. It stands in when no provider key is set so
// the server still boots and reports delivery failures per request.
type DisabledMailer struct{}

func (DisabledMailer) Send(context.Context, Message) (SendResult, error) {
	return SendResult{}, ErrNotConfigured
}
