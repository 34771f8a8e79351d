package memory

import (
	"context"
	"sync"
	"time"

	"github.com/pmfollow/followbot/internal/domain"
)

// RateLimiter is an in-process fixed-window rate limiter keyed by client
// identifier. Stale windows are pruned lazily on access.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	start time.Time
	count int
}

// NewRateLimiter creates an empty in-process RateLimiter.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{windows: make(map[string]*window)}
}

// Allow checks whether a request for the given key is permitted under the
// fixed-window rate limit. The request is counted when allowed.
func (rl *RateLimiter) Allow(_ context.Context, key string, limit int, windowSize time.Duration) (bool, error) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= windowSize {
		w = &window{start: now}
		rl.windows[key] = w
	}

	w.count++
	return w.count <= limit, nil
}

var _ domain.RateLimiter = (*RateLimiter)(nil)
