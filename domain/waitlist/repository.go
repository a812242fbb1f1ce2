package waitlist

import (
	"context"
	"errors"

	"github.com/akeren/waitlist-api/internal/models"
	apperrors "github.com/akeren/waitlist-api/pkg/errors"
	"gorm.io/gorm"
)

//go:generate mockgen -source=repository.go -destination=mock_repository_test.go -package=waitlist

type WaitlistRepository interface {
	// EmailExists reports whether an entry with this exact email is stored.
	EmailExists(ctx context.Context, email string) (bool, error)
	// FindByReferralCode returns (nil, nil) when no entry owns the code.
	FindByReferralCode(ctx context.Context, code string) (*models.WaitlistEntry, error)
	// CreateEntry persists a new entry and returns it with its store id.
	CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error)
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}

type waitlistRepository struct {
	db *gorm.DB
}

// NewWaitlistRepository stores entries in the waitlist_entries SQL table.
func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &waitlistRepository{db: db}
}

func (wr *waitlistRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64

	err := wr.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("email = ?", email).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, apperrors.NewDatabaseError("unable to check waitlist email", err)
	}

	return count > 0, nil
}

func (wr *waitlistRepository) FindByReferralCode(ctx context.Context, code string) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry

	err := wr.db.WithContext(ctx).Where("referral_code = ?", code).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("unable to look up referral code", err)
	}

	return &entry, nil
}

func (wr *waitlistRepository) CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
	if err := wr.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, apperrors.NewConflictError(ErrMsgAlreadyEnrolled, err)
		}
		return nil, apperrors.NewDatabaseError("unable to create waitlist entry", err)
	}

	return entry, nil
}

func (wr *waitlistRepository) Ping(ctx context.Context) error {
	sqlDB, err := wr.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || apperrors.IsDuplicateKeyError(err)
}
