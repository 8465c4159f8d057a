package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/career-passport/pkg/response"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds per-client rate limiting configuration
type RateLimitConfig struct {
	// RequestsPerSecond per client IP (0 = unlimited)
	RequestsPerSecond float64
	// Burst size (token bucket capacity)
	Burst int
	// CleanupInterval for idle client entries
	CleanupInterval time.Duration
	// EntryTTL after which an idle client entry is dropped
	EntryTTL time.Duration
}

// DefaultRateLimitConfig returns defaults sized for write endpoints
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 5,
		Burst:             10,
		CleanupInterval:   time.Minute,
		EntryTTL:          5 * time.Minute,
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// RateLimiter keeps one token bucket per key
type RateLimiter struct {
	config  RateLimitConfig
	entries sync.Map
	stop    chan struct{}
	once    sync.Once

	totalAllowed  atomic.Uint64
	totalRejected atomic.Uint64
}

// NewRateLimiter creates a limiter and starts its cleanup goroutine
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = time.Minute
	}
	if config.EntryTTL <= 0 {
		config.EntryTTL = 5 * time.Minute
	}
	if config.Burst <= 0 {
		config.Burst = int(math.Max(1, math.Ceil(config.RequestsPerSecond)))
	}

	rl := &RateLimiter{
		config: config,
		stop:   make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow reports whether a request for key may proceed now
func (rl *RateLimiter) Allow(key string) bool {
	if rl.config.RequestsPerSecond <= 0 {
		rl.totalAllowed.Add(1)
		return true
	}

	value, _ := rl.entries.LoadOrStore(key, &limiterEntry{
		limiter: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst),
	})
	entry := value.(*limiterEntry)
	entry.lastSeen.Store(time.Now().UnixNano())

	if entry.limiter.Allow() {
		rl.totalAllowed.Add(1)
		return true
	}
	rl.totalRejected.Add(1)
	return false
}

// GetStats returns allowed and rejected totals
func (rl *RateLimiter) GetStats() (allowed, rejected uint64) {
	return rl.totalAllowed.Load(), rl.totalRejected.Load()
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-rl.config.EntryTTL).UnixNano()
			rl.entries.Range(func(key, value interface{}) bool {
				if value.(*limiterEntry).lastSeen.Load() < cutoff {
					rl.entries.Delete(key)
				}
				return true
			})
		case <-rl.stop:
			return
		}
	}
}

// Stop stops the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Handler rate limits by client IP
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.Allow(c.ClientIP()) {
			c.Next()
			return
		}

		c.Header("Retry-After", "1")
		c.Header("X-RateLimit-Limit", strconv.FormatFloat(rl.config.RequestsPerSecond, 'f', -1, 64))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, response.TooManyRequests(""))
	}
}
