package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/servana-inc/servana/internal/infrastructure/config"
	"github.com/servana-inc/servana/internal/interfaces/http/middleware"
	"github.com/servana-inc/servana/internal/interfaces/http/routes"
	"github.com/servana-inc/servana/internal/shared/logger"
)

// Router owns the gin engine and the wired dependency container.
type Router struct {
	engine    *gin.Engine
	container *Container
	cfg       *config.Config
}

// NewRouter creates the HTTP router with all dependencies wired.
func NewRouter(cfg *config.Config, db *gorm.DB, log logger.Interface) *Router {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	container := NewContainer(cfg, db, log)

	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Correlation())
	engine.Use(middleware.Logger(log))
	engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	engine.Use(middleware.SecurityHeaders())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.SetupAuthRoutes(engine, &routes.AuthRouteConfig{
		AuthHandler:    container.authHandler,
		AuthMiddleware: container.authMiddleware,
		RateLimiter:    container.rateLimiter,
	})

	return &Router{
		engine:    engine,
		container: container,
		cfg:       cfg,
	}
}

// Engine exposes the underlying gin engine, mainly for the server command
// and for handler tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Shutdown releases resources held by the container.
func (r *Router) Shutdown(ctx context.Context) error {
	return r.container.Shutdown(ctx)
}
