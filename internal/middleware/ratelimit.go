package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookreview/internal/pkg/response"
	"bookreview/internal/ratelimit"
)

// RateLimit rejects clients over the limit with 429. Limiter errors let the
// request through.
func RateLimit(l ratelimit.Limiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			c.Header("Retry-After", "1")
			response.Abort(c, http.StatusTooManyRequests, "RATE_LIMITED", "Request was throttled")
			return
		}
		c.Next()
	}
}
