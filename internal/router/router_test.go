package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meditrack/authorization-api/internal/config"
	"github.com/meditrack/authorization-api/internal/handler"
	authhandler "github.com/meditrack/authorization-api/internal/handler/auth"
	"github.com/meditrack/authorization-api/internal/middleware"
	"github.com/meditrack/authorization-api/pkg/auth"
	"github.com/meditrack/authorization-api/pkg/logger"
	"github.com/meditrack/authorization-api/pkg/metrics"
)

func TestNew(t *testing.T) {
	cfg := config.ServerConfig{Port: 8080, TimeoutSeconds: 5, RateLimitRPS: 100, RateLimitBurst: 200}
	log := logger.New(nil)
	m := metrics.New("router_test")
	tokens := auth.NewJWTService("test-secret", 1)

	r, err := New(cfg, log, m,
		middleware.NewAuthMiddleware(tokens),
		handler.NewHealthHandler(nil),
		authhandler.NewHandler(nil, nil),
	)
	require.NoError(t, err)
	require.NotNil(t, r.Engine())

	t.Run("liveness route mounted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
		r.Engine().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("protected route requires a token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/00000000-0000-0000-0000-000000000000", nil)
		r.Engine().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
