package waitlist

import (
	"context"
	"errors"
	"testing"

	"github.com/akeren/waitlist-api/internal/log"
	"github.com/akeren/waitlist-api/internal/models"
	apperrors "github.com/akeren/waitlist-api/pkg/errors"
	"github.com/akeren/waitlist-api/pkg/referral"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func sequence(codes ...string) func() string {
	i := 0
	return func() string {
		code := codes[i%len(codes)]
		i++
		return code
	}
}

func echoCreate(id string) func(context.Context, *models.WaitlistEntry) (*models.WaitlistEntry, error) {
	return func(_ context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
		created := *entry
		created.ID = id
		return &created, nil
	}
}

func TestWaitlistService_Enroll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := NewMockWaitlistRepository(ctrl)
	logger := log.NewLoggerWithJSONOutput()

	t.Run("successful enrollment", func(t *testing.T) {
		service := NewWaitlistService(logger, mockRepo)

		var stored *models.WaitlistEntry
		mockRepo.EXPECT().EmailExists(gomock.Any(), "a@b.com").Return(false, nil)
		mockRepo.EXPECT().FindByReferralCode(gomock.Any(), gomock.Any()).Return(nil, nil)
		mockRepo.EXPECT().
			CreateEntry(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
				stored = entry
				return echoCreate("page-1")(ctx, entry)
			})

		result, err := service.Enroll(context.Background(), &EnrollRequest{Email: "  A@B.com "})

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "page-1", result.NotionID)
		assert.Len(t, result.Code, referral.DefaultLength)
		assert.True(t, referral.IsValidCode(result.Code))

		require.NotNil(t, stored)
		assert.Equal(t, "a@b.com", stored.Email)
		assert.Equal(t, "a", stored.Name)
		assert.Equal(t, result.Code, stored.ReferralCode)
		assert.Nil(t, stored.ReferredByCode)
		assert.Nil(t, stored.ReferrerID)
	})

	t.Run("email already on the waitlist", func(t *testing.T) {
		service := NewWaitlistService(logger, mockRepo)

		mockRepo.EXPECT().EmailExists(gomock.Any(), "taken@example.com").Return(true, nil)

		result, err := service.Enroll(context.Background(), &EnrollRequest{Email: "taken@example.com", FirstName: "Ada"})

		assert.Nil(t, result)
		require.Error(t, err)
		assert.Equal(t, apperrors.StatusConflict, apperrors.HTTPStatusCode(err))
		assert.Equal(t, ErrMsgAlreadyEnrolled, apperrors.GetHumanReadableMessage(err))
	})

	t.Run("duplicate check failure", func(t *testing.T) {
		service := NewWaitlistService(logger, mockRepo)

		mockRepo.EXPECT().
			EmailExists(gomock.Any(), gomock.Any()).
			Return(false, apperrors.NewDatabaseError("unable to check waitlist email", errors.New("timeout")))

		result, err := service.Enroll(context.Background(), &EnrollRequest{Email: "x@example.com"})

		assert.Nil(t, result)
		assert.Equal(t, apperrors.StatusInternalServerError, apperrors.HTTPStatusCode(err))
	})

	t.Run("untyped store failure becomes internal error", func(t *testing.T) {
		service := NewWaitlistService(logger, mockRepo, WithCodeGenerator(sequence("ABCDEFGH")))

		mockRepo.EXPECT().EmailExists(gomock.Any(), gomock.Any()).Return(false, nil)
		mockRepo.EXPECT().FindByReferralCode(gomock.Any(), "ABCDEFGH").Return(nil, nil)
		mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(nil, errors.New("socket closed"))

		_, err := service.Enroll(context.Background(), &EnrollRequest{Email: "x@example.com"})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternalServerError))
		assert.NotContains(t, apperrors.GetHumanReadableMessage(err), "socket")
	})

	t.Run("nil request", func(t *testing.T) {
		service := NewWaitlistService(logger, mockRepo)

		_, err := service.Enroll(context.Background(), nil)

		assert.Equal(t, apperrors.StatusBadRequest, apperrors.HTTPStatusCode(err))
	})
}

func TestWaitlistService_Enroll_Referrals(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := NewMockWaitlistRepository(ctrl)
	logger := log.NewLoggerWithJSONOutput()
	service := NewWaitlistService(logger, mockRepo, WithCodeGenerator(sequence("NEWCODE9")))

	t.Run("matching code links the referrer", func(t *testing.T) {
		var stored *models.WaitlistEntry

		mockRepo.EXPECT().EmailExists(gomock.Any(), gomock.Any()).Return(false, nil)
		mockRepo.EXPECT().FindByReferralCode(gomock.Any(), "NEWCODE9").Return(nil, nil)
		mockRepo.EXPECT().
			FindByReferralCode(gomock.Any(), "REF23456").
			Return(&models.WaitlistEntry{ID: "referrer-page", ReferralCode: "REF23456"}, nil)
		mockRepo.EXPECT().
			CreateEntry(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
				stored = entry
				return echoCreate("page-2")(ctx, entry)
			})

		result, err := service.Enroll(context.Background(), &EnrollRequest{
			Email:      "friend@example.com",
			FirstName:  "Grace",
			ReferredBy: " ref23456 ",
		})

		require.NoError(t, err)
		assert.Equal(t, "NEWCODE9", result.Code)
		require.NotNil(t, stored.ReferrerID)
		assert.Equal(t, "referrer-page", *stored.ReferrerID)
		require.NotNil(t, stored.ReferredByCode)
		assert.Equal(t, "REF23456", *stored.ReferredByCode)
		assert.Equal(t, "Grace", stored.Name)
	})

	t.Run("unknown code enrolls without relation", func(t *testing.T) {
		var stored *models.WaitlistEntry

		mockRepo.EXPECT().EmailExists(gomock.Any(), gomock.Any()).Return(false, nil)
		mockRepo.EXPECT().FindByReferralCode(gomock.Any(), "NEWCODE9").Return(nil, nil)
		mockRepo.EXPECT().FindByReferralCode(gomock.Any(), "ZZZZZZZZ").Return(nil, nil)
		mockRepo.EXPECT().
			CreateEntry(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
				stored = entry
				return echoCreate("page-3")(ctx, entry)
			})

		result, err := service.Enroll(context.Background(), &EnrollRequest{Email: "b@example.com", ReferredBy: "ZZZZZZZZ"})

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Nil(t, stored.ReferrerID)
		require.NotNil(t, stored.ReferredByCode)
		assert.Equal(t, "ZZZZZZZZ", *stored.ReferredByCode)
	})

	t.Run("lookup failure is swallowed", func(t *testing.T) {
		var stored *models.WaitlistEntry

		mockRepo.EXPECT().EmailExists(gomock.Any(), gomock.Any()).Return(false, nil)
		mockRepo.EXPECT().FindByReferralCode(gomock.Any(), "NEWCODE9").Return(nil, nil)
		mockRepo.EXPECT().
			FindByReferralCode(gomock.Any(), "ABCDEFGH").
			Return(nil, apperrors.NewDatabaseError("unable to look up referral code", errors.New("502")))
		mockRepo.EXPECT().
			CreateEntry(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
				stored = entry
				return echoCreate("page-4")(ctx, entry)
			})

		result, err := service.Enroll(context.Background(), &EnrollRequest{Email: "c@example.com", ReferredBy: "ABCDEFGH"})

		require.NoError(t, err)
		assert.Equal(t, "page-4", result.NotionID)
		assert.Nil(t, stored.ReferrerID)
	})

	t.Run("malformed code skips the lookup", func(t *testing.T) {
		mockRepo.EXPECT().EmailExists(gomock.Any(), gomock.Any()).Return(false, nil)
		mockRepo.EXPECT().FindByReferralCode(gomock.Any(), "NEWCODE9").Return(nil, nil)
		mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).DoAndReturn(echoCreate("page-5"))

		result, err := service.Enroll(context.Background(), &EnrollRequest{Email: "d@example.com", ReferredBy: "not-a-code!"})

		require.NoError(t, err)
		assert.True(t, result.Success)
	})
}

func TestWaitlistService_ReferralCodeRegeneration(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := NewMockWaitlistRepository(ctrl)
	logger := log.NewLoggerWithJSONOutput()

	t.Run("taken codes are replaced", func(t *testing.T) {
		service := NewWaitlistService(logger, mockRepo, WithCodeGenerator(sequence("TAKEN222", "TAKEN333", "FREE4444")))

		mockRepo.EXPECT().EmailExists(gomock.Any(), gomock.Any()).Return(false, nil)
		gomock.InOrder(
			mockRepo.EXPECT().FindByReferralCode(gomock.Any(), "TAKEN222").Return(&models.WaitlistEntry{ID: "x"}, nil),
			mockRepo.EXPECT().FindByReferralCode(gomock.Any(), "TAKEN333").Return(&models.WaitlistEntry{ID: "y"}, nil),
			mockRepo.EXPECT().FindByReferralCode(gomock.Any(), "FREE4444").Return(nil, nil),
		)
		mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).DoAndReturn(echoCreate("page-6"))

		result, err := service.Enroll(context.Background(), &EnrollRequest{Email: "e@example.com"})

		require.NoError(t, err)
		assert.Equal(t, "FREE4444", result.Code)
	})

	t.Run("gives up after three regenerations", func(t *testing.T) {
		service := NewWaitlistService(logger, mockRepo, WithCodeGenerator(sequence("TAKEN222")))

		mockRepo.EXPECT().EmailExists(gomock.Any(), gomock.Any()).Return(false, nil)
		mockRepo.EXPECT().
			FindByReferralCode(gomock.Any(), "TAKEN222").
			Return(&models.WaitlistEntry{ID: "x"}, nil).
			Times(maxCodeRegenerations + 1)
		mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).DoAndReturn(echoCreate("page-7"))

		result, err := service.Enroll(context.Background(), &EnrollRequest{Email: "f@example.com"})

		require.NoError(t, err)
		assert.Equal(t, "TAKEN222", result.Code)
	})

	t.Run("failed uniqueness check accepts the code", func(t *testing.T) {
		service := NewWaitlistService(logger, mockRepo, WithCodeGenerator(sequence("MAYBE222")))

		mockRepo.EXPECT().EmailExists(gomock.Any(), gomock.Any()).Return(false, nil)
		mockRepo.EXPECT().FindByReferralCode(gomock.Any(), "MAYBE222").Return(nil, errors.New("unavailable"))
		mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).DoAndReturn(echoCreate("page-8"))

		result, err := service.Enroll(context.Background(), &EnrollRequest{Email: "g@example.com"})

		require.NoError(t, err)
		assert.Equal(t, "MAYBE222", result.Code)
	})
}

func TestReferrerStatus_String(t *testing.T) {
	assert.Equal(t, "found", ReferrerFound.String())
	assert.Equal(t, "not_found", ReferrerNotFound.String())
	assert.Equal(t, "lookup_failed", ReferrerLookupFailed.String())
	assert.False(t, ReferrerLookup{Status: ReferrerFound}.Linked())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "a", DisplayName("", "a@b.com"))
	assert.Equal(t, "a", DisplayName("   ", "a@b.com"))
	assert.Equal(t, "Ada", DisplayName(" Ada ", "a@b.com"))
}
