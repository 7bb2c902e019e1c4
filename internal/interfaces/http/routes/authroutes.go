package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/servana-inc/servana/internal/interfaces/http/handlers"
	"github.com/servana-inc/servana/internal/interfaces/http/middleware"
)

// AuthRouteConfig holds dependencies for authentication routes.
type AuthRouteConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    *middleware.RateLimiter
}

// SetupAuthRoutes configures authentication routes.
func SetupAuthRoutes(engine *gin.Engine, cfg *AuthRouteConfig) {
	auth := engine.Group("/auth")
	{
		auth.GET("/oauth/google", cfg.RateLimiter.Limit(), cfg.AuthHandler.InitiateLogin)
		auth.GET("/oauth/google/callback", cfg.AuthHandler.HandleCallback)

		auth.POST("/session", cfg.RateLimiter.Limit(), cfg.AuthHandler.PickupSession)
		auth.POST("/refresh", cfg.RateLimiter.Limit(), cfg.AuthHandler.Refresh)

		auth.GET("/me", cfg.AuthMiddleware.RequireAuth(), cfg.AuthHandler.GetCurrentAccount)
		auth.POST("/link", cfg.AuthMiddleware.RequireAuth(), cfg.AuthHandler.Link)
		auth.DELETE("/link", cfg.AuthMiddleware.RequireAuth(), cfg.AuthHandler.Unlink)
		auth.POST("/password", cfg.AuthMiddleware.RequireAuth(), cfg.AuthHandler.SetPassword)
	}
}
