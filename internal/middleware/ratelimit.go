package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimitConfig holds configuration for the inquiry rate limiter
type RateLimitConfig struct {
	// MaxRequests per window per client IP
	MaxRequests int
	// Window size for the fixed window
	Window time.Duration
	// RedisKeyPrefix for counter keys
	RedisKeyPrefix string
}

// DefaultRateLimitConfig returns the limits the inquiry endpoint ships with
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests:    10,
		Window:         60 * time.Second,
		RedisKeyPrefix: "inquiry:ratelimit:",
	}
}

// RateLimiter caps inquiry submissions per client IP. Counters live in
// Redis; when Redis is unavailable a per-process in-memory fallback keeps
// the limit enforced for a single instance.
type RateLimiter struct {
	config      RateLimitConfig
	redisClient *redis.Client
	logger      *logrus.Entry

	localCounters map[string]*counterState
	localMu       sync.Mutex
}

type counterState struct {
	Count     int
	ExpiresAt time.Time
}

// RateLimitResult contains the result of a rate limit check
type RateLimitResult struct {
	Allowed       bool          `json:"allowed"`
	Remaining     int           `json:"remaining"`
	ResetAfter    time.Duration `json:"-"`
	RetryAfterSec int           `json:"retry_after_sec"`
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redisClient *redis.Client, logger *logrus.Logger) *RateLimiter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RateLimiter{
		config:        DefaultRateLimitConfig(),
		redisClient:   redisClient,
		logger:        logger.WithField("component", "rate_limiter"),
		localCounters: make(map[string]*counterState),
	}
}

// NewRateLimiterWithConfig creates a new rate limiter with custom config
func NewRateLimiterWithConfig(redisClient *redis.Client, logger *logrus.Logger, config RateLimitConfig) *RateLimiter {
	limiter := NewRateLimiter(redisClient, logger)
	if config.MaxRequests > 0 {
		limiter.config.MaxRequests = config.MaxRequests
	}
	if config.Window > 0 {
		limiter.config.Window = config.Window
	}
	if config.RedisKeyPrefix != "" {
		limiter.config.RedisKeyPrefix = config.RedisKeyPrefix
	}
	return limiter
}

// Allow increments the caller's counter and reports whether the request
// may proceed within the current window.
func (r *RateLimiter) Allow(ctx context.Context, clientIP string) *RateLimitResult {
	key := r.config.RedisKeyPrefix + clientIP

	count, ttl, ok := r.incrementRedis(ctx, key)
	if !ok {
		count, ttl = r.incrementLocal(key)
	}

	if count > r.config.MaxRequests {
		r.logger.WithFields(logrus.Fields{
			"client_ip": clientIP,
			"count":     count,
		}).Warn("Inquiry rate limit exceeded")
		return &RateLimitResult{
			Allowed:       false,
			Remaining:     0,
			ResetAfter:    ttl,
			RetryAfterSec: int(ttl.Seconds()) + 1,
		}
	}

	return &RateLimitResult{
		Allowed:   true,
		Remaining: r.config.MaxRequests - count,
	}
}

// Handler returns a gin middleware enforcing the limit before any
// validation or side effect runs.
func (r *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		result := r.Allow(c.Request.Context(), c.ClientIP())
		if !result.Allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", result.RetryAfterSec))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests, please try again later",
				"retry_after": result.RetryAfterSec,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// incrementRedis bumps the counter in Redis. The expiry is only set when
// the key is new so the window stays fixed rather than sliding.
func (r *RateLimiter) incrementRedis(ctx context.Context, key string) (int, time.Duration, bool) {
	if r.redisClient == nil {
		return 0, 0, false
	}

	count, err := r.redisClient.Incr(ctx, key).Result()
	if err != nil {
		r.logger.WithError(err).Warn("Redis increment failed, using local fallback")
		return 0, 0, false
	}
	if count == 1 {
		if err := r.redisClient.Expire(ctx, key, r.config.Window).Err(); err != nil {
			r.logger.WithError(err).Warn("Redis expire failed")
		}
	}

	ttl, err := r.redisClient.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = r.config.Window
	}

	return int(count), ttl, true
}

func (r *RateLimiter) incrementLocal(key string) (int, time.Duration) {
	r.localMu.Lock()
	defer r.localMu.Unlock()

	now := time.Now()
	state, exists := r.localCounters[key]
	if !exists || now.After(state.ExpiresAt) {
		state = &counterState{Count: 0, ExpiresAt: now.Add(r.config.Window)}
		r.localCounters[key] = state
	}
	state.Count++

	return state.Count, time.Until(state.ExpiresAt)
}

// GetConfig returns the current rate limit configuration
func (r *RateLimiter) GetConfig() RateLimitConfig {
	return r.config
}
