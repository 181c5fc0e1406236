package router

import (
	"github.com/labstack/echo/v4"

	"vendora/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimit *middleware.RateLimitMiddleware) {
	SetupHealthRouter(e)
	SetupAuthRouter(e, authMiddleware, rateLimit)
	SetupProductRouter(e, authMiddleware)
	SetupCartRouter(e, authMiddleware)
	SetupOrderRouter(e, authMiddleware, rateLimit)
	SetupSupportRouter(e, authMiddleware, rateLimit)
	SetupNotificationRouter(e, authMiddleware)
}
