package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFallbackLimiter(t *testing.T, cfg Config) *RateLimiter {
	t.Helper()

	// Empty address disables Redis so every check takes the in-memory path.
	client, err := NewRedisClient("", "", 0)
	require.NoError(t, err)
	require.False(t, client.IsEnabled())

	return NewRateLimiter(client, cfg, nil)
}

func TestFallbackAllowsWithinBurst(t *testing.T) {
	rl := newFallbackLimiter(t, Config{IPLimitPerMin: 3, BurstMultiplier: 2})

	// Token bucket starts full: limit * multiplier tokens.
	for i := 0; i < 6; i++ {
		res, err := rl.AllowIP(context.Background(), "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d should pass", i)
		assert.Equal(t, 3, res.Limit)
	}

	res, err := rl.AllowIP(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Positive(t, res.RetryAfter)
}

func TestFallbackIsolatesClients(t *testing.T) {
	rl := newFallbackLimiter(t, Config{IPLimitPerMin: 1, BurstMultiplier: 1})

	// Exhaust one client.
	for {
		res, err := rl.AllowIP(context.Background(), "10.0.0.1")
		require.NoError(t, err)
		if !res.Allowed {
			break
		}
	}

	res, err := rl.AllowIP(context.Background(), "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestFallbackMinimumBurst(t *testing.T) {
	rl := newFallbackLimiter(t, Config{IPLimitPerMin: 1, BurstMultiplier: 1})

	// Burst is floored at 5 so tiny limits don't reject legitimate clients
	// on their first page load.
	allowed := 0
	for i := 0; i < 10; i++ {
		res, err := rl.AllowIP(context.Background(), "10.0.0.9")
		require.NoError(t, err)
		if res.Allowed {
			allowed++
		}
	}
	assert.Equal(t, 5, allowed)
}

func TestGetStatsWithoutRedis(t *testing.T) {
	rl := newFallbackLimiter(t, DefaultConfig())

	_, err := rl.AllowIP(context.Background(), "10.0.0.1")
	require.NoError(t, err)

	stats := rl.GetStats()
	assert.Equal(t, false, stats["redis_enabled"])
	assert.Equal(t, 1, stats["fallback_limiters"])
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 60, cfg.IPLimitPerMin)
	assert.Equal(t, 2, cfg.BurstMultiplier)
}
