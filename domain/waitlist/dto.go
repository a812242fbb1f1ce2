package waitlist

import (
	"strings"

	"github.com/akeren/waitlist-api/internal/models"
)

// MaxReferredByLength caps the stored referredBy text. Longer input is cut,
// never rejected: a mistyped code must not block enrollment.
const MaxReferredByLength = 64

type EnrollRequest struct {
	Email      string `json:"email" binding:"required,email,max=255"`
	FirstName  string `json:"firstname" binding:"omitempty,max=255"`
	ReferredBy string `json:"referredBy"`
}

// Normalize runs before validation.
func (r *EnrollRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.ReferredBy = strings.TrimSpace(r.ReferredBy)
	if runes := []rune(r.ReferredBy); len(runes) > MaxReferredByLength {
		r.ReferredBy = string(runes[:MaxReferredByLength])
	}
}

type EnrollResponse struct {
	Success  bool   `json:"success"`
	Code     string `json:"code"`
	NotionID string `json:"notionId"`
}

type ReferrerStatus int

const (
	ReferrerNotFound ReferrerStatus = iota
	ReferrerFound
	ReferrerLookupFailed
)

func (s ReferrerStatus) String() string {
	switch s {
	case ReferrerFound:
		return "found"
	case ReferrerLookupFailed:
		return "lookup_failed"
	default:
		return "not_found"
	}
}

// ReferrerLookup is the outcome of resolving a referral code. Only Found
// carries an EntryID; the other outcomes enroll without a referrer link.
type ReferrerLookup struct {
	Status  ReferrerStatus
	EntryID string
	Err     error
}

func (l ReferrerLookup) Linked() bool {
	return l.Status == ReferrerFound && l.EntryID != ""
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DisplayName falls back to the local part of the email when name is blank.
func DisplayName(name, email string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}

func ToEnrollResponse(entry *models.WaitlistEntry) *EnrollResponse {
	return &EnrollResponse{
		Success:  true,
		Code:     entry.ReferralCode,
		NotionID: entry.ID,
	}
}
