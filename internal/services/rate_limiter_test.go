package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestRateLimiterEnforcesBudget(t *testing.T) {
	limiter := NewRequestRateLimiter(2, time.Minute)

	require.NoError(t, limiter.Allow("10.0.0.1"))
	require.NoError(t, limiter.Allow("10.0.0.1"))
	assert.Error(t, limiter.Allow("10.0.0.1"))

	// Budgets are per client.
	assert.NoError(t, limiter.Allow("10.0.0.2"))
}

func TestRequestRateLimiterWindowExpiry(t *testing.T) {
	limiter := NewRequestRateLimiter(1, 10*time.Millisecond)

	require.NoError(t, limiter.Allow("10.0.0.1"))
	assert.Error(t, limiter.Allow("10.0.0.1"))

	time.Sleep(20 * time.Millisecond)
	assert.NoError(t, limiter.Allow("10.0.0.1"))
}

func TestRequestRateLimiterReset(t *testing.T) {
	limiter := NewRequestRateLimiter(1, time.Minute)
	require.NoError(t, limiter.Allow("10.0.0.1"))

	limiter.Reset()

	assert.NoError(t, limiter.Allow("10.0.0.1"))
	stats := limiter.GetStats()
	assert.Equal(t, 1, stats["tracked_clients"])
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "board:2025-01-10", BoardCacheKey("2025-01-10"))
}
