package config

import (
	"github.com/akeren/waitlist-api/internal/log"
	"github.com/akeren/waitlist-api/pkg/mailer"
)

const (
	DefaultMailFrom    = "Waitlist <onboarding@resend.dev>"
	DefaultMailSubject = "You're on the waitlist!"
)

type MailConfig struct {
	APIKey  string
	From    string
	Subject string
}

func NewMailConfig() MailConfig {
	return MailConfig{
		APIKey:  sanitizeEnv(GetValueFromEnvironmentVariable("RESEND_API_KEY", "")),
		From:    sanitizeEnv(GetValueFromEnvironmentVariable("MAIL_FROM", DefaultMailFrom)),
		Subject: sanitizeEnv(GetValueFromEnvironmentVariable("MAIL_SUBJECT", DefaultMailSubject)),
	}
}

func (mc MailConfig) NewMailer(logger *log.Logger) mailer.Mailer {
	if mc.APIKey == "" {
		logger.Error("RESEND_API_KEY is not set; welcome emails will fail")
		return mailer.DisabledMailer{}
	}

	m, err := mailer.NewResendMailer(mc.APIKey)
	if err != nil {
		logger.Error("Failed to create Resend mailer", "error", err)
		return mailer.DisabledMailer{}
	}
	return m
}
