package mail

import (
	"context"
	"strings"

	"github.com/akeren/waitlist-api/internal/log"
	apperrors "github.com/akeren/waitlist-api/pkg/errors"
	"github.com/akeren/waitlist-api/pkg/mailer"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

const MsgWelcomeSent = "Welcome email sent."

var tracer = otel.Tracer("github.com/akeren/waitlist-api/domain/mail")

type MailService interface {
	// SendWelcome renders the welcome email and hands it to the provider once.
	SendWelcome(ctx context.Context, req *SendWelcomeRequest) (*SendWelcomeResponse, error)
}

type mailService struct {
	logger   *log.Logger
	mailer   mailer.Mailer
	settings Settings
}

func NewMailService(logger *log.Logger, m mailer.Mailer, settings Settings) MailService {
	return &mailService{
		logger:   logger.WithSource("mail"),
		mailer:   m,
		settings: settings,
	}
}

func (s *mailService) SendWelcome(ctx context.Context, req *SendWelcomeRequest) (resp *SendWelcomeResponse, err error) {
	ctx, span := tracer.Start(ctx, "mail.SendWelcome")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, apperrors.GetErrorType(err))
		}
		span.End()
	}()

	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil || strings.TrimSpace(req.Email) == "" {
		return nil, apperrors.NewInvalidRequestError("email is required", nil)
	}

	html, text, err := mailer.RenderWelcome(mailer.WelcomeData{Name: req.Name})
	if err != nil {
		logger.Error("Failed to render welcome email", "error", err)
		return nil, apperrors.NewInternalServerError("unable to render welcome email", err)
	}

	result, err := s.mailer.Send(ctx, mailer.Message{
		From:    s.settings.From,
		To:      []string{strings.TrimSpace(req.Email)},
		Subject: s.settings.Subject,
		HTML:    html,
		Text:    text,
	})
	if err == nil && result.MessageID == "" {
		err = mailer.ErrEmptyResponse
	}
	if err != nil {
		logger.Error("Failed to send welcome email", "error", err)
		return nil, apperrors.NewDeliveryError("Failed to send email", err)
	}

	logger.Info("Welcome email sent", "message_id", result.MessageID)
	return &SendWelcomeResponse{Message: MsgWelcomeSent}, nil
}
