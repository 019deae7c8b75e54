package middleware

import (
	"context"
	"fmt"

	"limoride/internal/utils"
	"limoride/pkg/cache"

	"github.com/gin-gonic/gin"
)

// RateLimiter counts hits per key within a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int) (bool, error)
}

// RedisRateLimiter implements fixed-window rate limiting backed by Redis.
type RedisRateLimiter struct {
	cache *cache.RedisCache
}

func NewRedisRateLimiter(cache *cache.RedisCache) *RedisRateLimiter {
	return &RedisRateLimiter{cache: cache}
}

func (r *RedisRateLimiter) Allow(ctx context.Context, key string, limit int) (bool, error) {
	count, err := r.cache.Increment(ctx, key)
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := r.cache.SetExpire(ctx, key, utils.RateLimitWindow); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}

// RateLimitMiddleware limits requests per client IP. Limiter failures let the
// request through; throttling is protection, not a dependency.
func RateLimitMiddleware(limiter RateLimiter, limit int, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s%s:%s", utils.CacheKeyRateLimit, scope, c.ClientIP())

		allowed, err := limiter.Allow(c.Request.Context(), key, limit)
		if err != nil {
			c.Next()
			return
		}
		if !allowed {
			utils.TooManyRequestsResponse(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
