package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/callscribe/util"
)

// Audio uploads dominate request bodies, so the default is generous.
const defaultMaxBodySize = 64 * 1024 * 1024 // 64MB

// BodySizeLimit returns middleware that restricts the request body to the
// given size string (e.g. "64MB", "512KB", "1GB"). Oversized bodies fail the
// handler's read with http.MaxBytesError.
func BodySizeLimit(maxSize string) Middleware {
	size := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, size)
			next.ServeHTTP(w, r)
		})
	}
}

// GinBodySizeLimit returns a Gin middleware for body size limiting.
func GinBodySizeLimit(maxSize string) gin.HandlerFunc {
	return GinWrap(BodySizeLimit(maxSize))
}
