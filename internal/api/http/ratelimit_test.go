package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_SweepDropsIdleClients(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{PerMinute: 60, Burst: 5, CleanupInterval: time.Minute}, nil)
	defer rl.Stop()

	assert.True(t, rl.limiterFor("10.0.0.1").Allow())
	assert.True(t, rl.limiterFor("10.0.0.2").Allow())
	assert.Equal(t, 2, rl.ClientCount())

	rl.sweep(time.Now().Add(time.Minute))
	assert.Equal(t, 2, rl.ClientCount())

	rl.sweep(time.Now().Add(3 * time.Minute))
	assert.Equal(t, 0, rl.ClientCount())
}

func TestRateLimiter_BurstPerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{PerMinute: 1, Burst: 2}, nil)
	defer rl.Stop()

	assert.True(t, rl.limiterFor("a").Allow())
	assert.True(t, rl.limiterFor("a").Allow())
	assert.False(t, rl.limiterFor("a").Allow())
	assert.True(t, rl.limiterFor("b").Allow())
	assert.Equal(t, 60, rl.retryAfterSeconds())
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{}, nil)
	rl.Stop()
	rl.Stop()
}
