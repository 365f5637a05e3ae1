package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter throttles sign-in attempts per client IP.
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewLoginLimiter allows burst attempts, refilling one every interval.
func NewLoginLimiter(burst int, interval time.Duration) *LoginLimiter {
	return &LoginLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Every(interval),
		burst:    burst,
	}
}

func (ll *LoginLimiter) Allow(ip string) bool {
	ll.mu.Lock()
	entry, ok := ll.limiters[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(ll.rate, ll.burst)}
		ll.limiters[ip] = entry
	}
	entry.lastAccess = time.Now()
	limiter := entry.limiter
	ll.mu.Unlock()

	return limiter.Allow()
}

// Reset forgets an IP after a successful sign-in.
func (ll *LoginLimiter) Reset(ip string) {
	ll.mu.Lock()
	delete(ll.limiters, ip)
	ll.mu.Unlock()
}

// Cleanup drops limiters idle for longer than maxIdle.
func (ll *LoginLimiter) Cleanup(maxIdle time.Duration) int {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	threshold := time.Now().Add(-maxIdle)
	removed := 0
	for ip, entry := range ll.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(ll.limiters, ip)
			removed++
		}
	}
	return removed
}
