package waitlist

import (
	"context"
	"encoding/json"
	"time"

	"github.com/akeren/waitlist-api/internal/log"
	"github.com/akeren/waitlist-api/internal/models"
	"github.com/akeren/waitlist-api/pkg/constants"
)

const referralCacheKeyPrefix = "waitlist:referral:"

// ReferralCache is the subset of the application cache used for referral lookups.
type ReferralCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

type cachedReferral struct {
	ID           string `json:"id"`
	ReferralCode string `json:"referral_code"`
}

type cachedRepository struct {
	WaitlistRepository
	cache  ReferralCache
	ttl    time.Duration
	logger *log.Logger
}

// NewCachedRepository memoises successful referral-code lookups. Entries never
// change once written, so only hits are cached and nothing is invalidated.
// Cache failures fall through to the wrapped repository.
func NewCachedRepository(inner WaitlistRepository, cache ReferralCache, logger *log.Logger) WaitlistRepository {
	if cache == nil {
		return inner
	}

	return &cachedRepository{
		WaitlistRepository: inner,
		cache:              cache,
		ttl:                constants.ReferralLookupCacheTTL,
		logger:             logger.WithSource("waitlist.cache"),
	}
}

func referralCacheKey(code string) string {
	return referralCacheKeyPrefix + code
}

func (cr *cachedRepository) FindByReferralCode(ctx context.Context, code string) (*models.WaitlistEntry, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, cr.logger)
	key := referralCacheKey(code)

	raw, err := cr.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("Referral cache read failed", "error", err)
	} else if raw != "" {
		var hit cachedReferral
		if err := json.Unmarshal([]byte(raw), &hit); err == nil && hit.ID != "" {
			return &models.WaitlistEntry{ID: hit.ID, ReferralCode: hit.ReferralCode}, nil
		}
		logger.Warn("Discarding malformed referral cache entry", "key", key)
	}

	entry, err := cr.WaitlistRepository.FindByReferralCode(ctx, code)
	if err != nil || entry == nil {
		return entry, err
	}

	payload, _ := json.Marshal(cachedReferral{ID: entry.ID, ReferralCode: entry.ReferralCode})
	if err := cr.cache.Set(ctx, key, string(payload), cr.ttl); err != nil {
		logger.Warn("Referral cache write failed", "error", err)
	}

	return entry, nil
}
