package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsRouter(config CORSConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS(config))
	router.POST("/search_video", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestCORSAllowList(t *testing.T) {
	router := corsRouter(CORSConfig{AllowOrigins: []string{"http://app.local"}, MaxAge: 10 * time.Minute})

	tests := []struct {
		name           string
		origin         string
		expectedOrigin string
	}{
		{"listed", "http://app.local", "http://app.local"},
		{"unlisted", "http://evil.local", ""},
		{"no origin", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/search_video", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	router := corsRouter(DefaultCORSConfig())

	req := httptest.NewRequest(http.MethodOptions, "/search_video", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), RequestIDHeader)
}
