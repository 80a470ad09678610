package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/skillsenselab/callscribe/errors"
	"github.com/skillsenselab/callscribe/logger"
)

// Recovery returns a Gin middleware that recovers from panics, logs the
// stack, and responds with the standard error envelope.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Panic recovered", map[string]interface{}{
					"error":     fmt.Sprintf("%v", r),
					"stack":     string(debug.Stack()),
					"path":      c.Request.URL.Path,
					"method":    c.Request.Method,
					"client_ip": c.ClientIP(),
				})
				err := apperrors.Internal(fmt.Errorf("panic: %v", r))
				c.AbortWithStatusJSON(http.StatusInternalServerError, err.ToResponse())
			}
		}()
		c.Next()
	}
}
