package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/consultly/consultly-backend/internal/services"
	"github.com/consultly/consultly-backend/internal/utils"
)

// RateLimitMiddleware throttles requests per client IP using the Redis
// fixed-window limiter
func RateLimitMiddleware(limiter *services.RateLimitService) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := limiter.Allow(c.Request.Context(), utils.GetRealIP(c))
		if err != nil {
			var rateErr *services.RateLimitError
			if errors.As(err, &rateErr) {
				c.Header("Retry-After", strconv.Itoa(int(rateErr.RetryAfter.Seconds())+1))
				c.JSON(http.StatusTooManyRequests, gin.H{
					"error":   "rate_limited",
					"message": rateErr.Message,
					"code":    "RATE_LIMIT_EXCEEDED",
				})
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
