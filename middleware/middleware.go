package middleware

import (
	C "github.com/xjrad/miniapp-data-analysis/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const HEADER_REQUEST_ID = "X-Request-Id"

// CustomCors for customised cors configuration based on environment.
func CustomCors() gin.HandlerFunc {
	return func(c *gin.Context) {
		corsConfig := cors.DefaultConfig()

		if C.IsDevelopment() {
			corsConfig.AllowOrigins = []string{"http://localhost:8080", "http://localhost:3000", "http://localhost:5173"}
		} else {
			corsConfig.AllowAllOrigins = true
		}

		cors.New(corsConfig)(c)
		c.Next()
	}
}

// RequestLogger tags each request with an id and logs method, path and
// status on completion.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.Request.Header.Get(HEADER_REQUEST_ID)
		if requestId == "" {
			requestId = uuid.New().String()
		}
		c.Writer.Header().Set(HEADER_REQUEST_ID, requestId)

		c.Next()

		log.WithFields(log.Fields{
			"request_id": requestId,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
		}).Info("Request completed")
	}
}
