package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillsenselab/callscribe/logger"
)

// RequestIDKey is the Gin context key under which the request ID is stored.
const RequestIDKey = "request_id"

// RequestID injects a unique X-Request-Id header into every request and
// response, and stores it in the request context for log enrichment.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(RequestIDKey, id)
		c.Header("X-Request-Id", id)
		c.Request = c.Request.WithContext(
			logger.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
