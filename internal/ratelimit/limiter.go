package ratelimit

import (
	"sync"
	"time"
)

// Limiter implements a token bucket rate limiter.
type Limiter struct {
	tokens     int
	maxTokens  int
	refillRate time.Duration
	mu         sync.Mutex
	lastRefill time.Time
}

// NewLimiter creates a token bucket holding maxTokens, gaining one token
// every refillRate.
func NewLimiter(maxTokens int, refillRate time.Duration) *Limiter {
	return &Limiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow consumes a token if one is available.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()

	if l.tokens > 0 {
		l.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available.
func (l *Limiter) Wait() {
	for !l.Allow() {
		time.Sleep(l.refillRate / time.Duration(l.maxTokens))
	}
}

// WaitWithTimeout waits for a token and reports whether one was acquired
// before the timeout.
func (l *Limiter) WaitWithTimeout(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if l.Allow() {
			return true
		}

		sleep := l.refillRate / time.Duration(l.maxTokens)
		if remaining := time.Until(deadline); sleep > remaining {
			sleep = remaining
		}
		if sleep > 0 {
			time.Sleep(sleep)
		}
	}
	return false
}

// TokensAvailable returns the current token count.
func (l *Limiter) TokensAvailable() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	return l.tokens
}

// refill adds tokens for elapsed time. Caller holds the mutex.
func (l *Limiter) refill() {
	now := time.Now()
	gained := int(now.Sub(l.lastRefill) / l.refillRate)
	if gained > 0 {
		l.tokens = min(l.maxTokens, l.tokens+gained)
		l.lastRefill = now
	}
}

// NewBrowseLimiter returns the default limiter for the eBay Browse API.
// The basic application tier allows 5,000 calls/day; a small bucket at one
// token per 2s keeps bursts short while staying far under the quota.
func NewBrowseLimiter() *Limiter {
	return NewLimiter(3, 2*time.Second)
}

// NewScrapeLimiter returns the default limiter for sold-page scraping,
// pinned to roughly browser speed.
func NewScrapeLimiter() *Limiter {
	return NewLimiter(1, 3*time.Second)
}
