package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(max int, window time.Duration) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	r := NewRateLimiter(max, window)
	r.now = clock.Now
	return r, clock
}

func TestRateLimiter_CeilingEnforced(t *testing.T) {
	r, _ := newTestLimiter(5, time.Hour)

	for i := 0; i < 5; i++ {
		assert.True(t, r.IsAllowed(), "request %d should be admitted", i+1)
	}
	assert.False(t, r.IsAllowed(), "sixth request must be rejected")
	assert.Equal(t, 0, r.Remaining())
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	r, clock := newTestLimiter(5, time.Hour)

	// fill the window at t0
	for i := 0; i < 5; i++ {
		require.True(t, r.IsAllowed())
	}
	require.False(t, r.IsAllowed())

	// one second before the boundary the window is still full
	clock.Advance(time.Hour - time.Second)
	assert.False(t, r.IsAllowed())

	// exactly one window later the t0 timestamps have aged out
	clock.Advance(time.Second)
	assert.True(t, r.IsAllowed())
	assert.Equal(t, 4, r.Remaining())
}

func TestRateLimiter_RejectionsNotCounted(t *testing.T) {
	r, clock := newTestLimiter(2, time.Minute)

	require.True(t, r.IsAllowed())
	require.True(t, r.IsAllowed())

	// hammer the full window; rejections must not extend it
	for i := 0; i < 10; i++ {
		assert.False(t, r.IsAllowed())
	}

	clock.Advance(time.Minute)
	assert.True(t, r.IsAllowed())
}

func TestRateLimiter_Remaining(t *testing.T) {
	r, _ := newTestLimiter(3, time.Hour)
	assert.Equal(t, 3, r.Remaining())
	assert.Equal(t, 3, r.Limit())

	r.IsAllowed()
	assert.Equal(t, 2, r.Remaining())
}

func TestRateLimiter_Defaults(t *testing.T) {
	r := NewRateLimiter(0, 0)
	assert.Equal(t, 1000, r.Limit())
	assert.True(t, r.IsAllowed())
}
