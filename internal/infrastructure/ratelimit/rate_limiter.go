package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	ActionSupportChat = "support_chat"
	ActionCheckout    = "checkout"
	ActionAuth        = "auth"
)

// Policy is a steady rate plus the burst allowed on top of it.
type Policy struct {
	Every time.Duration
	Burst int
}

var defaultPolicies = map[string]Policy{
	ActionSupportChat: {Every: 6 * time.Second, Burst: 5},
	ActionCheckout:    {Every: 10 * time.Second, Burst: 3},
	ActionAuth:        {Every: 5 * time.Second, Burst: 5},
}

var fallbackPolicy = Policy{Every: time.Second, Burst: 20}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per (key, action).
type RateLimiter struct {
	policies map[string]Policy
	entries  map[string]*entry
	mutex    sync.Mutex
	now      func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithPolicies(defaultPolicies)
}

func NewRateLimiterWithPolicies(policies map[string]Policy) *RateLimiter {
	copied := make(map[string]Policy, len(policies))
	for action, p := range policies {
		copied[action] = p
	}
	return &RateLimiter{
		policies: copied,
		entries:  make(map[string]*entry),
		now:      time.Now,
	}
}

// Allow consumes one token for key and action. When the bucket is empty it
// returns false and how long until the next token.
func (rl *RateLimiter) Allow(key, action string) (bool, time.Duration) {
	limiter := rl.limiter(key, action)

	now := rl.now()
	reservation := limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, 0
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (rl *RateLimiter) limiter(key, action string) *rate.Limiter {
	id := key + ":" + action

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	e, ok := rl.entries[id]
	if !ok {
		p, ok := rl.policies[action]
		if !ok {
			p = fallbackPolicy
		}
		e = &entry{limiter: rate.NewLimiter(rate.Every(p.Every), p.Burst)}
		rl.entries[id] = e
	}
	e.lastSeen = rl.now()
	return e.limiter
}

// Cleanup drops buckets idle for longer than idle.
func (rl *RateLimiter) Cleanup(idle time.Duration) int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	cutoff := rl.now().Add(-idle)
	removed := 0
	for id, e := range rl.entries {
		if e.lastSeen.Before(cutoff) {
			delete(rl.entries, id)
			removed++
		}
	}
	return removed
}

func (rl *RateLimiter) StartCleanupRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			case <-ctx.Done():
				return
			}
		}
	}()
}
