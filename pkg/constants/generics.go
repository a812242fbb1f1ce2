package constants

import "time"

// RFC 3339 date-time format string used when timestamps leave the service.
const RFC3339DateTimeFormat = "2006-01-02T15:04:05Z07:00"

// Global rate limit applied to every route without an override.
const (
	DefaultRateLimitRequests      = 100
	DefaultRateLimitWindowMinutes = 1
)

func DefaultRateLimitWindow() time.Duration {
	return time.Duration(DefaultRateLimitWindowMinutes) * time.Minute
}

// Welcome emails cost money and reputation, so each client IP gets two
// attempts per rolling minute.
const (
	MailRateLimitRequests = 2
	MailRateLimitWindow   = time.Minute
)

// ReferralLookupCacheTTL bounds how long a resolved referral code is cached.
// Entries are immutable, so the TTL only limits memory use.
const ReferralLookupCacheTTL = 24 * time.Hour
