package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowHonoursBurst(t *testing.T) {
	rl := NewRateLimiterWithPolicies(map[string]Policy{
		"chat": {Every: time.Minute, Burst: 2},
	})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow("u1", "chat")
	assert.True(t, ok)
	ok, _ = rl.Allow("u1", "chat")
	assert.True(t, ok)

	ok, wait := rl.Allow("u1", "chat")
	assert.False(t, ok)
	assert.InDelta(t, time.Minute.Seconds(), wait.Seconds(), 1)

	// other users have their own bucket
	ok, _ = rl.Allow("u2", "chat")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	ok, _ = rl.Allow("u1", "chat")
	assert.True(t, ok)
}

func TestCleanupRemovesIdleBuckets(t *testing.T) {
	rl := NewRateLimiter()
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.Allow("u1", ActionSupportChat)
	rl.Allow("u2", "unknown-action")

	now = now.Add(2 * time.Hour)
	rl.Allow("u3", ActionCheckout)

	assert.Equal(t, 2, rl.Cleanup(time.Hour))
	assert.Len(t, rl.entries, 1)
}
