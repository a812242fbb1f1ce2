package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WaitlistEntry is one person on the waitlist. Entries are written once and
// never updated, so the referrer link is resolved at creation time only.
type WaitlistEntry struct {
	ID             string  `gorm:"primaryKey;type:text"`
	Email          string  `gorm:"not null;uniqueIndex"`
	Name           string  `gorm:"not null"`
	ReferralCode   string  `gorm:"not null;index"`
	ReferredByCode *string `gorm:"type:text"`
	ReferrerID     *string `gorm:"type:text;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (e *WaitlistEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

var ModelRegistry = []interface{}{
	&WaitlistEntry{},
}
