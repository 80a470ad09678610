package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/callscribe/logger"
)

// RequestLogger returns middleware that logs every request with method,
// path, status code, and duration. Health and metrics probes are skipped.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isProbeEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)
			duration := time.Since(start)

			fields := map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      sw.status,
				"duration_ms": duration.Milliseconds(),
			}
			if id := r.Header.Get("X-Request-Id"); id != "" {
				fields[logger.FieldRequestID] = id
			}

			logByStatus(log, fields, sw.status)
		})
	}
}

// GinRequestLogger returns a Gin middleware for request logging. It sees the
// final status Gin wrote, including from aborted handlers.
func GinRequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isProbeEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path = path + "?" + q
		}

		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        path,
			"status":      status,
			"duration_ms": latency.Milliseconds(),
			"client":      c.ClientIP(),
		}
		if id := c.GetString(RequestIDKey); id != "" {
			fields[logger.FieldRequestID] = id
		}
		if latency > 500*time.Millisecond {
			fields["slow"] = true
		}

		logByStatus(log, fields, status)
	}
}

func isProbeEndpoint(path string) bool {
	switch path {
	case "/health", "/info", "/metrics":
		return true
	}
	return false
}

// logByStatus logs request fields at a level derived from the HTTP status.
// A nil log falls back to the global logger.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Info("Request completed", fields)
	}
}
