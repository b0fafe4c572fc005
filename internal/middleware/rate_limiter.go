package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiterConfig defines rate limiting rules for the auth endpoints.
type RateLimiterConfig struct {
	MaxRequests int           // Maximum requests allowed in the window
	Window      time.Duration // Counting window
	BlockTime   time.Duration // How long to block after exceeding limit
}

// RateLimiter provides IP-based rate limiting backed by Redis. It guards the
// signup and login forms against credential stuffing.
type RateLimiter struct {
	redis  *redis.Client
	ctx    context.Context
	config RateLimiterConfig
}

func NewRateLimiter(redisClient *redis.Client, config RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		ctx:    context.Background(),
		config: config,
	}
}

// Middleware returns a Gin middleware enforcing the limit. Redis errors fail
// open: a broken limiter must not take logins down with it.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		allowed, retryAfter, err := rl.CheckLimit(clientIP)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many attempts. Try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// CheckLimit counts the request against the IP's window and reports whether
// it may proceed. Exceeding the window puts the IP behind a block key until
// BlockTime passes.
func (rl *RateLimiter) CheckLimit(clientIP string) (allowed bool, retryAfter time.Duration, err error) {
	blockKey := rl.blockKey(clientIP)

	ttl, err := rl.redis.TTL(rl.ctx, blockKey).Result()
	if err != nil {
		return false, 0, err
	}
	if ttl > 0 {
		return false, ttl, nil
	}

	countKey := rl.countKey(clientIP)

	count, err := rl.redis.Incr(rl.ctx, countKey).Result()
	if err != nil {
		return false, 0, err
	}
	if count == 1 {
		if err := rl.redis.Expire(rl.ctx, countKey, rl.config.Window).Err(); err != nil {
			return false, 0, err
		}
	}

	if count > int64(rl.config.MaxRequests) {
		if err := rl.redis.Set(rl.ctx, blockKey, 1, rl.config.BlockTime).Err(); err != nil {
			return false, 0, err
		}
		return false, rl.config.BlockTime, nil
	}

	return true, 0, nil
}

func (rl *RateLimiter) countKey(clientIP string) string {
	return "ratelimit:count:" + clientIP
}

func (rl *RateLimiter) blockKey(clientIP string) string {
	return "ratelimit:block:" + clientIP
}
