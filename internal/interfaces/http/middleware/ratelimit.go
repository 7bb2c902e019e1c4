package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/servana-inc/servana/internal/infrastructure/ratelimit"
	"github.com/servana-inc/servana/internal/shared/logger"
	"github.com/servana-inc/servana/internal/shared/utils"
)

// RateLimiter throttles requests per client IP. When the backing store is
// unavailable the request is allowed through rather than failing closed,
// so a Redis outage does not take authentication down with it.
type RateLimiter struct {
	limiter ratelimit.Limiter
	limit   ratelimit.Limit
	logger  logger.Interface
}

func NewRateLimiter(limiter ratelimit.Limiter, limit ratelimit.Limit, logger logger.Interface) *RateLimiter {
	return &RateLimiter{
		limiter: limiter,
		limit:   limit,
		logger:  logger,
	}
}

// Limit returns a Gin middleware that enforces the rate limit per client IP.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := rl.limiter.Allow(c.Request.Context(), c.ClientIP(), rl.limit)
		if err != nil {
			rl.logger.Warnw("rate limiter unavailable, allowing request", "error", err)
			c.Next()
			return
		}

		if !allowed {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
