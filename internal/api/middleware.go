package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// requestLogger logs one line per request once the handler has finished.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// recovery turns a panic into the generic 500 body. The panic value is
// only logged.
func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		s.internalError(c, fmt.Errorf("panic: %v", recovered))
		c.Abort()
	})
}

// allowAnyOrigin lets browser clients on any origin call the API.
// Preflight requests end here with 204.
func allowAnyOrigin() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:    []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	})
}
