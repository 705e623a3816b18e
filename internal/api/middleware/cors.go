package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// CORSConfig lists the origins allowed to call the search API from a browser.
// "*" allows any origin.
type CORSConfig struct {
	AllowOrigins []string
	MaxAge       time.Duration
}

// DefaultCORSConfig allows any origin and caches preflights for an hour.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{AllowOrigins: []string{"*"}, MaxAge: time.Hour}
}

// CORS answers preflights with 204 and tags responses for allowed origins.
// The API only has GET and POST routes, all taking JSON.
func CORS(config CORSConfig) gin.HandlerFunc {
	maxAge := strconv.Itoa(int(config.MaxAge.Seconds()))
	return func(c *gin.Context) {
		switch origin := c.GetHeader("Origin"); {
		case lo.Contains(config.AllowOrigins, "*"):
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && lo.Contains(config.AllowOrigins, origin):
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		c.Header("Access-Control-Expose-Headers", RequestIDHeader)
		if config.MaxAge > 0 {
			c.Header("Access-Control-Max-Age", maxAge)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
