package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"travelaigent.app/agent/common/logger"
)

// RequestLogger logs one line per request with method, path, status and
// latency. Health probes are skipped to keep the log readable.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.FullPath() == "/health" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{Component: "agent.http"})
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
			slog.ErrorContext(ctx, "request failed", attrs...)
			return
		}
		slog.InfoContext(ctx, "request handled", attrs...)
	}
}

// Recovery turns panics into 500 responses instead of dropping the
// connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{Component: "agent.http"})
				slog.ErrorContext(ctx, "panic recovered",
					"panic", r, "path", c.Request.URL.Path)
				c.AbortWithStatusJSON(500, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}
