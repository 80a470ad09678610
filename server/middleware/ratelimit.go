package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/skillsenselab/callscribe/errors"
)

// RateLimitConfig configures the rate limiting middleware. Transcription
// uploads fan out to the speech backend, so they get a per-client cap.
type RateLimitConfig struct {
	// RequestsPerMinute is the maximum number of requests allowed per minute per key.
	RequestsPerMinute int
	// KeyFunc extracts the rate limit key from a request. Defaults to client IP.
	KeyFunc func(*gin.Context) string
}

// RateLimiter applies per-key sliding-window rate limiting. A janitor
// goroutine prunes idle keys; Stop halts it.
type RateLimiter struct {
	limit int
	keyFn func(*gin.Context) string

	mu       sync.Mutex
	requests map[string][]time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewRateLimiter creates a RateLimiter and starts its pruning janitor.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPBasedKey
	}
	rl := &RateLimiter{
		limit:    cfg.RequestsPerMinute,
		keyFn:    cfg.KeyFunc,
		requests: make(map[string][]time.Time),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go rl.janitor()
	return rl
}

// Middleware returns the Gin handler enforcing the limit.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(rl.keyFn(c)) {
			err := apperrors.InvalidInput("rate", "rate limit exceeded, retry later")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, err.ToResponse())
			return
		}
		c.Next()
	}
}

// Stop halts the pruning janitor. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stop)
		<-rl.done
	})
}

// IPBasedKey extracts the client IP for use as a rate limit key.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}

// SessionBasedKey keys the limit on the session path parameter, falling back
// to client IP for session-less routes.
func SessionBasedKey(c *gin.Context) string {
	if id := c.Param("id"); id != "" {
		return id
	}
	return c.ClientIP()
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-time.Minute)

	valid := filterByTime(rl.requests[key], cutoff)
	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}
	rl.requests[key] = append(valid, now)
	return true
}

func (rl *RateLimiter) janitor() {
	defer close(rl.done)
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.prune()
		}
	}
}

func (rl *RateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := time.Now().Add(-time.Minute)
	for key, times := range rl.requests {
		valid := filterByTime(times, cutoff)
		if len(valid) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = valid
		}
	}
}

func filterByTime(times []time.Time, cutoff time.Time) []time.Time {
	var result []time.Time
	for _, t := range times {
		if t.After(cutoff) {
			result = append(result, t)
		}
	}
	return result
}
