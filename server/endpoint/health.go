package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Component health statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// ComponentHealth is one dependency's health as reported by the checker.
type ComponentHealth struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthChecker returns health status for the service's dependencies, e.g.
// the configured transcription backend.
type HealthChecker func(ctx context.Context) []ComponentHealth

// Health returns a handler that reports service health including component
// statuses. Any unhealthy component makes the overall status unhealthy and
// the response a 503.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := StatusHealthy
		var components []ComponentHealth

		if checker != nil {
			components = checker(c.Request.Context())
			for _, ch := range components {
				if ch.Status == StatusUnhealthy {
					status = StatusUnhealthy
					break
				}
				if ch.Status == StatusDegraded {
					status = StatusDegraded
				}
			}
		}

		httpStatus := http.StatusOK
		if status == StatusUnhealthy {
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":     status,
			"service":    serviceName,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"components": components,
		})
	}
}
