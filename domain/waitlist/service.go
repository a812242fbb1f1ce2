package waitlist

import (
	"context"

	"github.com/akeren/waitlist-api/internal/log"
	"github.com/akeren/waitlist-api/internal/models"
	apperrors "github.com/akeren/waitlist-api/pkg/errors"
	"github.com/akeren/waitlist-api/pkg/referral"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	ErrMsgAlreadyEnrolled = "You're already on the waitlist."

	// maxCodeRegenerations bounds how often a taken referral code is replaced.
	maxCodeRegenerations = 3
)

var tracer = otel.Tracer("github.com/akeren/waitlist-api/domain/waitlist")

type WaitlistService interface {
	// Enroll adds a new person to the waitlist and returns their referral code.
	Enroll(ctx context.Context, req *EnrollRequest) (*EnrollResponse, error)

	// ResolveReferrer never fails; lookup problems are reported in the result.
	ResolveReferrer(ctx context.Context, code string) ReferrerLookup
}

type ServiceOption func(*waitlistService)

// WithCodeGenerator replaces the random referral code source.
func WithCodeGenerator(gen func() string) ServiceOption {
	return func(s *waitlistService) {
		if gen != nil {
			s.generateCode = gen
		}
	}
}

type waitlistService struct {
	logger       *log.Logger
	repository   WaitlistRepository
	generateCode func() string
}

func NewWaitlistService(logger *log.Logger, repository WaitlistRepository, opts ...ServiceOption) WaitlistService {
	s := &waitlistService{
		logger:     logger.WithSource("waitlist"),
		repository: repository,
		generateCode: func() string {
			return referral.GenerateCode(referral.DefaultLength)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *waitlistService) Enroll(ctx context.Context, req *EnrollRequest) (resp *EnrollResponse, err error) {
	ctx, span := tracer.Start(ctx, "waitlist.Enroll")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, apperrors.GetErrorType(err))
		}
		span.End()
	}()

	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		logger.Error("Enroll received empty request")
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	email := NormalizeEmail(req.Email)
	if email == "" {
		return nil, apperrors.NewInvalidRequestError("email is required", nil)
	}

	exists, err := s.repository.EmailExists(ctx, email)
	if err != nil {
		logger.Error("Failed to check waitlist email", "error", err)
		return nil, asInternal(err)
	}
	if exists {
		logger.Info("Email already on the waitlist")
		return nil, apperrors.NewConflictError(ErrMsgAlreadyEnrolled, nil)
	}

	code := s.newReferralCode(ctx, logger)

	entry := &models.WaitlistEntry{
		Email:        email,
		Name:         DisplayName(req.FirstName, email),
		ReferralCode: code,
	}

	if referredBy := referral.Normalize(req.ReferredBy); referredBy != "" {
		entry.ReferredByCode = &referredBy

		lookup := s.ResolveReferrer(ctx, referredBy)
		span.SetAttributes(attribute.String("waitlist.referrer", lookup.Status.String()))
		if lookup.Linked() {
			entry.ReferrerID = &lookup.EntryID
		}
	}

	created, err := s.repository.CreateEntry(ctx, entry)
	if err != nil {
		logger.Error("Failed to create waitlist entry", "error", err)
		return nil, asInternal(err)
	}

	logger.Info("Waitlist entry created", "id", created.ID, "referred", entry.ReferrerID != nil)
	return ToEnrollResponse(created), nil
}

func (s *waitlistService) ResolveReferrer(ctx context.Context, code string) ReferrerLookup {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	code = referral.Normalize(code)
	if !referral.IsValidCode(code) {
		logger.Warn("Ignoring malformed referral code", "code", code)
		return ReferrerLookup{Status: ReferrerNotFound}
	}

	referrer, err := s.repository.FindByReferralCode(ctx, code)
	if err != nil {
		logger.Warn("Referrer lookup failed; enrolling without referrer", "code", code, "error", err)
		return ReferrerLookup{Status: ReferrerLookupFailed, Err: err}
	}
	if referrer == nil {
		logger.Info("Referral code not found", "code", code)
		return ReferrerLookup{Status: ReferrerNotFound}
	}

	return ReferrerLookup{Status: ReferrerFound, EntryID: referrer.ID}
}

// newReferralCode regenerates a taken code up to maxCodeRegenerations times.
// A failed uniqueness check accepts the current code.
func (s *waitlistService) newReferralCode(ctx context.Context, logger *log.Logger) string {
	code := s.generateCode()

	for attempt := 0; ; attempt++ {
		owner, err := s.repository.FindByReferralCode(ctx, code)
		if err != nil {
			logger.Warn("Referral code uniqueness check failed", "error", err)
			return code
		}
		if owner == nil {
			return code
		}
		if attempt == maxCodeRegenerations {
			logger.Error("Referral code still taken after regenerating", "attempts", attempt)
			return code
		}

		logger.Info("Referral code already taken, regenerating", "attempt", attempt+1)
		code = s.generateCode()
	}
}

// asInternal keeps conflicts and typed errors, and hides anything else behind a 500.
func asInternal(err error) error {
	if apperrors.GetErrorType(err) != apperrors.ErrorTypeUnknown {
		return err
	}
	return apperrors.NewInternalServerError("unexpected waitlist failure", err)
}
