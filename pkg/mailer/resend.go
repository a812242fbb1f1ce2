package mailer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

type ResendOption func(*resendOptions)

type resendOptions struct {
	httpClient *http.Client
	baseURL    string
	now        func() time.Time
}

func WithHTTPClient(c *http.Client) ResendOption {
	return func(o *resendOptions) { o.httpClient = c }
}

// WithBaseURL points the client at another API host, used by tests.
func WithBaseURL(u string) ResendOption {
	return func(o *resendOptions) { o.baseURL = u }
}

type ResendMailer struct {
	client *resend.Client
	now    func() time.Time
}

func NewResendMailer(apiKey string, opts ...ResendOption) (*ResendMailer, error) {
	o := resendOptions{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	client := resend.NewCustomClient(o.httpClient, apiKey)
	if o.baseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(o.baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("mailer: invalid base url: %w", err)
		}
		client.BaseURL = base
	}

	return &ResendMailer{client: client, now: o.now}, nil
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) (SendResult, error) {
	req := &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	}

	resp, err := m.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return SendResult{}, fmt.Errorf("mailer: resend send: %w", err)
	}
	if resp == nil || resp.Id == "" {
		return SendResult{}, ErrEmptyResponse
	}

	return SendResult{MessageID: resp.Id, SentAt: m.now()}, nil
}
