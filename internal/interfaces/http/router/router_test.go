package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/omnisync/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingRoutes struct{}

func (pingRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	rg.POST("/echo", func(c *gin.Context) {
		b, err := c.GetRawData()
		if err != nil {
			middleware.AbortTooLarge(c)
			return
		}
		c.String(http.StatusOK, string(b))
	})
	rg.GET("/panic", func(c *gin.Context) { panic("boom") })
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).Register(pingRoutes{}).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestNewEngine(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	engine, err := NewEngine(EngineConfig{
		ServiceName:  "omnisync-test",
		MaxBodyBytes: 16,
		CORS:         middleware.DefaultCORSConfig(),
	}, zap.New(core))
	require.NoError(t, err)
	NewRouter(engine).Register(pingRoutes{}).Setup()

	t.Run("sets request id and logs", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		assert.NotZero(t, logs.FilterMessage("HTTP Request").Len())
	})

	t.Run("limits body size", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/echo", strings.NewReader(strings.Repeat("x", 64))))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("recovers from panics", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/panic", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
	})
}
