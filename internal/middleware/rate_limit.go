package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/famnudger/fam/backend/internal/logger"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window. Zero disables the limiter.
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RateLimiter counts requests per household in fixed redis windows.
type RateLimiter struct {
	redis  redis.Cmdable
	config RateLimitConfig
	log    *logger.Logger
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient redis.Cmdable, config RateLimitConfig, log *logger.Logger) *RateLimiter {
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "fam:ratelimit"
	}
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		log:    log,
		now:    time.Now,
	}
}

// Middleware enforces the limit for the authenticated household. It must run
// after AuthMiddleware. Redis failures let the request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.config.Limit <= 0 {
			c.Next()
			return
		}

		householdID, ok := HouseholdID(c)
		if !ok {
			AbortWithError(c, http.StatusUnauthorized, "unauthorized", "household not authenticated")
			return
		}

		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), householdID.String())
		if err != nil {
			rl.log.Warn("rate limit check failed", "household_id", householdID, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			retryAfter := int(resetTime.Sub(rl.now()).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			AbortWithError(c, http.StatusTooManyRequests, "rate_limited",
				fmt.Sprintf("rate limit of %d requests per %v exceeded", rl.config.Limit, rl.config.Window))
			return
		}

		c.Next()
	}
}

// IsAllowed counts a request for key in the current window.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	pipe := rl.redis.TxPipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}
