package resilience

import (
	"sync"
	"time"
)

// RateLimiter admits at most maxRequests calls per sliding window. Requests
// over the ceiling are rejected outright, never queued; callers record the
// rejection as a skip and move on.
type RateLimiter struct {
	mu sync.Mutex

	maxRequests int
	window      time.Duration
	timestamps  []time.Time

	now func() time.Time
}

// NewRateLimiter creates a limiter. Non-positive arguments fall back to
// 1000 requests per hour.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	if window <= 0 {
		window = time.Hour
	}
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		timestamps:  make([]time.Time, 0, maxRequests),
		now:         time.Now,
	}
}

// IsAllowed records and admits the request if the window has room. Expired
// timestamps are pruned first, so a request landing exactly one window after
// an earlier one no longer counts it.
func (r *RateLimiter) IsAllowed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.prune(now)

	if len(r.timestamps) >= r.maxRequests {
		return false
	}
	r.timestamps = append(r.timestamps, now)
	return true
}

// Remaining returns how many requests the window still admits.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prune(r.now())
	return r.maxRequests - len(r.timestamps)
}

// Limit returns the configured ceiling.
func (r *RateLimiter) Limit() int {
	return r.maxRequests
}

// prune drops timestamps older than the window. Caller holds the lock.
func (r *RateLimiter) prune(now time.Time) {
	cutoff := now.Add(-r.window)
	i := 0
	for i < len(r.timestamps) && !r.timestamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		r.timestamps = append(r.timestamps[:0], r.timestamps[i:]...)
	}
}
