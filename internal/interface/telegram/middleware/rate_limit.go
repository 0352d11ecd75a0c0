package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// RATE LIMITER MIDDLEWARE
// Protects the bot from spam using a per-user token bucket. Be gentle with
// legitimate users who double-tap a command, firm with actual spammers.
// ══════════════════════════════════════════════════════════════════════════════

// RateLimitConfig holds configuration for the rate limiter.
type RateLimitConfig struct {
	// RequestsPerMinute is the maximum number of requests per user per minute.
	RequestsPerMinute int

	// BurstSize is the maximum burst size (tokens in bucket at start).
	BurstSize int

	// CleanupInterval is how often to clean up idle buckets.
	CleanupInterval time.Duration

	// WhitelistedUsers are users exempt from rate limiting (e.g., the leader).
	WhitelistedUsers map[int64]bool

	// OnRateLimited returns the message to send to a throttled user.
	OnRateLimited func(telegramID int64, retryAfter time.Duration) string
}

// DefaultRateLimitConfig returns sensible defaults for rate limiting.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 20,
		BurstSize:         5,
		CleanupInterval:   5 * time.Minute,
		WhitelistedUsers:  make(map[int64]bool),
		OnRateLimited: func(telegramID int64, retryAfter time.Duration) string {
			seconds := int(retryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			return fmt.Sprintf(
				"⏳ Slow down a bit! Please wait %d seconds and try again.",
				seconds,
			)
		},
	}
}

// RateLimiter implements per-user rate limiting using the token bucket algorithm.
type RateLimiter struct {
	config  RateLimitConfig
	buckets sync.Map // map[int64]*tokenBucket
	stop    chan struct{}
}

type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	refillRate float64 // tokens per second
	maxTokens  float64
}

// NewRateLimiter creates a new rate limiter with the given configuration.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		config: config,
		stop:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// RateLimitResult represents the result of a rate limit check.
type RateLimitResult struct {
	// Allowed indicates if the request is allowed.
	Allowed bool

	// RetryAfter is how long the user should wait before retrying.
	RetryAfter time.Duration

	// ResponseMessage is the message to send if rate limited.
	ResponseMessage string

	// RemainingTokens is the number of tokens remaining in the bucket.
	RemainingTokens int
}

// Check checks if a request from the given user is allowed.
func (rl *RateLimiter) Check(ctx context.Context, telegramID int64) *RateLimitResult {
	if rl.config.WhitelistedUsers[telegramID] {
		return &RateLimitResult{
			Allowed:         true,
			RemainingTokens: rl.config.BurstSize,
		}
	}

	bucket := rl.getBucket(telegramID)
	allowed, retryAfter, remaining := bucket.consume()
	if !allowed {
		return &RateLimitResult{
			Allowed:         false,
			RetryAfter:      retryAfter,
			ResponseMessage: rl.config.OnRateLimited(telegramID, retryAfter),
		}
	}

	return &RateLimitResult{
		Allowed:         true,
		RemainingTokens: remaining,
	}
}

// Reset resets the rate limit state for a user.
func (rl *RateLimiter) Reset(telegramID int64) {
	rl.buckets.Delete(telegramID)
}

// Close stops the background cleanup goroutine.
func (rl *RateLimiter) Close() {
	close(rl.stop)
}

func (rl *RateLimiter) getBucket(telegramID int64) *tokenBucket {
	if val, ok := rl.buckets.Load(telegramID); ok {
		return val.(*tokenBucket)
	}

	bucket := &tokenBucket{
		tokens:     float64(rl.config.BurstSize),
		lastRefill: time.Now(),
		refillRate: float64(rl.config.RequestsPerMinute) / 60.0,
		maxTokens:  float64(rl.config.BurstSize),
	}
	actual, _ := rl.buckets.LoadOrStore(telegramID, bucket)
	return actual.(*tokenBucket)
}

// consume tries to consume a token.
// Returns (allowed, retryAfter, remainingTokens).
func (b *tokenBucket) consume() (bool, time.Duration, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now

	if b.tokens >= 1.0 {
		b.tokens--
		return true, 0, int(b.tokens)
	}

	deficit := 1.0 - b.tokens
	retryAfter := time.Duration(deficit / b.refillRate * float64(time.Second))
	return false, retryAfter, 0
}

func (rl *RateLimiter) cleanupLoop() {
	interval := rl.config.CleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-interval)
			rl.buckets.Range(func(key, val any) bool {
				bucket := val.(*tokenBucket)
				bucket.mu.Lock()
				idle := bucket.lastRefill.Before(cutoff)
				bucket.mu.Unlock()
				if idle {
					rl.buckets.Delete(key)
				}
				return true
			})
		}
	}
}
