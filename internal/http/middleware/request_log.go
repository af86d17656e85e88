package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/productforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
)

// RequestLogger logs one line per request: 5xx at Error, 4xx at Warn.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}
		// health probes and scrapes would drown the log
		if c.FullPath() == "/healthcheck" || c.FullPath() == "/metrics" {
			return
		}

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		ctx := c.Request.Context()
		rd := ctxutil.GetRequestData(ctx)

		fields := append([]interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"route", path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"bytes", c.Writer.Size(),
		}, ctxutil.TraceFields(ctx)...)
		if rd != nil && rd.UserID != uuid.Nil {
			fields = append(fields, "user_id", rd.UserID.String())
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("http request", fields...)
		case status >= 400:
			log.Warn("http request", fields...)
		default:
			log.Info("http request", fields...)
		}
	}
}
