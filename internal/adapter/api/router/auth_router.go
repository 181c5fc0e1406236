package router

import (
	"github.com/labstack/echo/v4"

	"vendora/internal/adapter/api/handler"
	"vendora/internal/adapter/api/middleware"
	"vendora/internal/infrastructure/ratelimit"
)

func SetupAuthRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimit *middleware.RateLimitMiddleware) {
	authHandler := handler.GetAuthHandler()

	public := e.Group("/v1/auth")
	public.Use(rateLimit.Limit(ratelimit.ActionAuth))
	public.POST("/register", authHandler.Register)
	public.POST("/login", authHandler.Login)
	public.POST("/refresh", authHandler.RefreshToken)

	protected := e.Group("/v1/auth")
	protected.Use(authMiddleware.Authenticate)
	protected.POST("/logout", authHandler.Logout)
	protected.GET("/me", authHandler.Me)

	admin := e.Group("/v1/admin/users")
	admin.Use(authMiddleware.Authenticate, middleware.AdminOnly())
	admin.PUT("/:id/role", authHandler.SetRole)
}
