package infra

import (
	"sync"
	"time"
)

// RateLimiter implements a token bucket rate limiter.
// Thread-safe and suitable for concurrent API calls.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewRateLimiter creates a new rate limiter.
// maxBurst: maximum burst size; perSecond: refill rate.
func NewRateLimiter(maxBurst int, perSecond float64) *RateLimiter {
	return &RateLimiter{
		tokens:     float64(maxBurst),
		maxTokens:  float64(maxBurst),
		refillRate: perSecond,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available.
func (r *RateLimiter) Wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()

	for r.tokens < 1 {
		waitTime := time.Duration(float64(time.Second) / r.refillRate)
		r.mu.Unlock()
		time.Sleep(waitTime)
		r.mu.Lock()
		r.refill()
	}

	r.tokens--
}

// TryAcquire attempts to acquire a token without blocking.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()

	if r.tokens >= 1 {
		r.tokens--
		return true
	}
	return false
}

// refill adds tokens based on elapsed time. Must be called with mutex held.
func (r *RateLimiter) refill() {
	now := time.Now()
	r.tokens += now.Sub(r.lastRefill).Seconds() * r.refillRate
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
	r.lastRefill = now
}

// Venue rate limiters. Stockfighter throttles aggressive clients, and order
// entry is where self-inflicted book impact lives, so order calls get a much
// tighter budget than market data reads.
var (
	venueOrderLimiter  *RateLimiter
	venueMarketLimiter *RateLimiter
	venueLimiterOnce   sync.Once
)

// OrderLimiter returns the shared limiter for order entry calls.
func OrderLimiter() *RateLimiter {
	venueLimiterOnce.Do(initVenueLimiters)
	return venueOrderLimiter
}

// MarketLimiter returns the shared limiter for quote/status reads.
func MarketLimiter() *RateLimiter {
	venueLimiterOnce.Do(initVenueLimiters)
	return venueMarketLimiter
}

func initVenueLimiters() {
	venueOrderLimiter = NewRateLimiter(2, 2)   // 2 req/s, burst 2
	venueMarketLimiter = NewRateLimiter(5, 10) // 10 req/s, burst 5
}
