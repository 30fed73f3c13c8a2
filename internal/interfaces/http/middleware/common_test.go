package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	t.Run("propagates header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "req-abc")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-abc", w.Body.String())
		assert.Equal(t, "req-abc", w.Header().Get(RequestIDHeader))
	})

	t.Run("generates when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		_, err := uuid.Parse(w.Body.String())
		assert.NoError(t, err)
		assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
	})

	t.Run("replaces oversized id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("a", MaxRequestIDLength+1))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Len(t, w.Body.String(), 36)
	})
}

func TestCORSWithConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(cfg CORSConfig) *gin.Engine {
		router := gin.New()
		router.Use(CORSWithConfig(cfg))
		router.GET("/test", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return router
	}

	tests := []struct {
		name        string
		origins     []string
		credentials bool
		origin      string
		method      string
		wantStatus  int
		wantOrigin  string
		wantCreds   string
	}{
		{"empty list sets nothing", nil, false, "https://a.example", http.MethodGet, http.StatusOK, "", ""},
		{"allowed origin", []string{"https://a.example"}, true, "https://a.example", http.MethodGet, http.StatusOK, "https://a.example", "true"},
		{"other origin", []string{"https://a.example"}, true, "https://b.example", http.MethodGet, http.StatusOK, "", ""},
		{"wildcard drops credentials", []string{"*"}, true, "https://b.example", http.MethodGet, http.StatusOK, "*", ""},
		{"preflight always 204", nil, false, "https://a.example", http.MethodOptions, http.StatusNoContent, "", ""},
		{"preflight allowed", []string{"https://a.example"}, false, "https://a.example", http.MethodOptions, http.StatusNoContent, "https://a.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCORSConfig()
			cfg.AllowOrigins = tt.origins
			cfg.AllowCredentials = tt.credentials

			req := httptest.NewRequest(tt.method, "/test", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			newRouter(cfg).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCreds, w.Header().Get("Access-Control-Allow-Credentials"))
			if tt.wantOrigin != "" {
				assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
				assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
			}
		})
	}
}
