package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bookreview/internal/pkg/response"
)

const requestIDHeader = "X-Request-ID"

// RequestID reuses the client's X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs every request and recovers from panics.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Error("panic recovered",
					append(requestFields(c, start),
						zap.String("error", fmt.Sprintf("%v", recovered)),
						zap.ByteString("stack", debug.Stack()),
					)...,
				)
				if !c.Writer.Written() {
					response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
				}
				c.Abort()
				return
			}

			fields := requestFields(c, start)
			for _, err := range c.Errors {
				fields = append(fields, zap.NamedError("error", err.Err))
			}

			switch status := c.Writer.Status(); {
			case status >= http.StatusInternalServerError:
				log.Error("request", fields...)
			case status >= http.StatusBadRequest:
				log.Warn("request", fields...)
			default:
				log.Info("request", fields...)
			}
		}()

		c.Next()
	}
}

func requestFields(c *gin.Context, start time.Time) []zap.Field {
	return []zap.Field{
		zap.Int("status", c.Writer.Status()),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("query", c.Request.URL.RawQuery),
		zap.String("client_ip", c.ClientIP()),
		zap.Int64("user_id", c.GetInt64(ctxUserID)),
		zap.String("role", c.GetString(ctxRole)),
		zap.String("request_id", c.GetString("request_id")),
		zap.Duration("latency", time.Since(start)),
	}
}
