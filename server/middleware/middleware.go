// Package middleware provides the HTTP middleware stack applied by the
// server: panic recovery, request IDs, CORS, body-size limits, rate
// limiting, and request logging.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Middleware wraps an http.Handler with additional behavior. It is the
// standard Go middleware signature, usable both at the http.Server level and
// (via GinWrap) inside a Gin handler chain.
type Middleware func(http.Handler) http.Handler

// Chain composes multiple middleware. The first in the list is the outermost
// (runs first on a request, last on a response).
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// GinWrap adapts a standard Middleware for use in a Gin middleware chain.
func GinWrap(mw Middleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			// Propagate request modifications (e.g. added context values) back to Gin.
			c.Request = r
			c.Next()
		})
		mw(next).ServeHTTP(c.Writer, c.Request)
	}
}
