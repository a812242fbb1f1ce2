package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const sweepEvery = 1024

// InMemoryRateLimiter implements token bucket rate limiting for single instances
type InMemoryRateLimiter struct {
	requests int
	window   time.Duration
	now      func() time.Time

	mu       sync.Mutex
	limiters map[string]*keyedLimiter
	ops      uint64
}

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewInMemoryRateLimiter(requests int, window time.Duration, opts ...Option) *InMemoryRateLimiter {
	o := buildOptions(opts)
	return &InMemoryRateLimiter{
		requests: requests,
		window:   window,
		now:      o.now,
		limiters: make(map[string]*keyedLimiter),
	}
}

func (r *InMemoryRateLimiter) GetLimitDetails() (int, time.Duration) {
	return r.requests, r.window
}

func (r *InMemoryRateLimiter) Allow(_ context.Context, key string) (Decision, error) {
	key = normalizeKey(key)
	now := r.now()
	perSecond := float64(r.requests) / r.window.Seconds()

	r.mu.Lock()
	defer r.mu.Unlock()

	k, ok := r.limiters[key]
	if !ok {
		k = &keyedLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), r.requests)}
		r.limiters[key] = k
	}
	k.lastSeen = now

	// Idle keys are swept now and then so the map cannot grow without bound.
	r.ops++
	if r.ops%sweepEvery == 0 {
		cutoff := now.Add(-2 * r.window)
		for kKey, kVal := range r.limiters {
			if kVal.lastSeen.Before(cutoff) {
				delete(r.limiters, kKey)
			}
		}
	}

	allowed := k.limiter.AllowN(now, 1)
	tokens := k.limiter.TokensAt(now)

	d := Decision{Allowed: allowed, Limit: r.requests, Remaining: max(0, int(tokens))}
	if !allowed && perSecond > 0 {
		d.RetryAfter = time.Duration((1 - tokens) / perSecond * float64(time.Second))
	}
	return d, nil
}

func (r *InMemoryRateLimiter) Close() error {
	return nil
}

// InMemorySlidingWindowLimiter keeps the accepted request timestamps per key
// and admits a request only while fewer than the limit fall in the window.
type InMemorySlidingWindowLimiter struct {
	requests int
	window   time.Duration
	now      func() time.Time

	mu   sync.Mutex
	hits map[string][]time.Time
	ops  uint64
}

func NewInMemorySlidingWindowLimiter(requests int, window time.Duration, opts ...Option) *InMemorySlidingWindowLimiter {
	o := buildOptions(opts)
	return &InMemorySlidingWindowLimiter{
		requests: requests,
		window:   window,
		now:      o.now,
		hits:     make(map[string][]time.Time),
	}
}

func (r *InMemorySlidingWindowLimiter) GetLimitDetails() (int, time.Duration) {
	return r.requests, r.window
}

func (r *InMemorySlidingWindowLimiter) Allow(_ context.Context, key string) (Decision, error) {
	key = normalizeKey(key)
	now := r.now()
	cutoff := now.Add(-r.window)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.ops++
	if r.ops%sweepEvery == 0 {
		for kKey, kHits := range r.hits {
			if len(kHits) == 0 || !kHits[len(kHits)-1].After(cutoff) {
				delete(r.hits, kKey)
			}
		}
	}

	live := prune(r.hits[key], cutoff)

	if len(live) >= r.requests {
		r.hits[key] = live
		return Decision{
			Allowed:    false,
			Limit:      r.requests,
			Remaining:  0,
			RetryAfter: live[0].Add(r.window).Sub(now),
		}, nil
	}

	live = append(live, now)
	r.hits[key] = live

	return Decision{
		Allowed:   true,
		Limit:     r.requests,
		Remaining: r.requests - len(live),
	}, nil
}

func (r *InMemorySlidingWindowLimiter) Close() error {
	return nil
}

// prune drops timestamps at or before cutoff; hits are kept in ascending order.
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}
