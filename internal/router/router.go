package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meditrack/authorization-api/internal/config"
	"github.com/meditrack/authorization-api/internal/handler"
	"github.com/meditrack/authorization-api/internal/middleware"
	"github.com/meditrack/authorization-api/pkg/logger"
	"github.com/meditrack/authorization-api/pkg/metrics"
	"github.com/meditrack/authorization-api/pkg/validator"
)

// Handler mounts a set of routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// AuthHandler mounts both public and token-protected routes.
type AuthHandler interface {
	RegisterPublicRoutes(*gin.RouterGroup)
	RegisterProtectedRoutes(*gin.RouterGroup)
}

type Router struct {
	engine *gin.Engine
}

// New assembles the full middleware chain and route tree.
func New(cfg config.ServerConfig, log *logger.Logger, m *metrics.Metrics,
	auth *middleware.AuthMiddleware, health *handler.HealthHandler,
	authH AuthHandler, handlers ...Handler) (*Router, error) {

	if err := validator.Register(); err != nil {
		return nil, fmt.Errorf("registering validations: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(log))
	engine.Use(middleware.Metrics(m))

	limiter := middleware.NewRateLimiter(float64(cfg.RateLimitRPS), cfg.RateLimitBurst)
	engine.Use(limiter.RateLimit())

	health.RegisterRoutes(engine)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api/v1")
	authH.RegisterPublicRoutes(api)

	protected := api.Group("")
	protected.Use(auth.Authenticate())
	authH.RegisterProtectedRoutes(protected)
	for _, h := range handlers {
		h.RegisterRoutes(protected)
	}

	return &Router{engine: engine}, nil
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
