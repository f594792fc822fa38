package services

import (
	"fmt"
	"sync"
	"time"
)

// RequestRateLimiter is a sliding-window limiter keyed by client. The
// prediction endpoints sit in front of full board rebuilds on cache miss,
// so unthrottled polling gets expensive fast.
type RequestRateLimiter struct {
	mu          sync.RWMutex
	requests    map[string][]time.Time
	maxRequests int
	window      time.Duration
}

// NewRequestRateLimiter allows maxRequests per client per window.
func NewRequestRateLimiter(maxRequests int, window time.Duration) *RequestRateLimiter {
	return &RequestRateLimiter{
		requests:    make(map[string][]time.Time),
		maxRequests: maxRequests,
		window:      window,
	}
}

// Allow records the request and reports whether the client is within its
// budget.
func (rl *RequestRateLimiter) Allow(client string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.cleanupOldRequests(client, now)

	if len(rl.requests[client]) >= rl.maxRequests {
		return fmt.Errorf("rate limit exceeded: maximum %d requests per %v", rl.maxRequests, rl.window)
	}

	rl.requests[client] = append(rl.requests[client], now)
	return nil
}

// cleanupOldRequests removes requests outside the time window
func (rl *RequestRateLimiter) cleanupOldRequests(client string, now time.Time) {
	requests, exists := rl.requests[client]
	if !exists {
		return
	}
	cutoff := now.Add(-rl.window)
	valid := make([]time.Time, 0, len(requests))
	for _, req := range requests {
		if req.After(cutoff) {
			valid = append(valid, req)
		}
	}
	if len(valid) == 0 {
		delete(rl.requests, client)
	} else {
		rl.requests[client] = valid
	}
}

// GetStats returns rate limiter statistics
func (rl *RequestRateLimiter) GetStats() map[string]interface{} {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	return map[string]interface{}{
		"tracked_clients": len(rl.requests),
		"max_requests":    rl.maxRequests,
		"window":          rl.window.String(),
	}
}

// Reset clears all rate limiting data
func (rl *RequestRateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.requests = make(map[string][]time.Time)
}
