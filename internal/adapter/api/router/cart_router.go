package router

import (
	"github.com/labstack/echo/v4"

	"vendora/internal/adapter/api/handler"
	"vendora/internal/adapter/api/middleware"
)

// SetupCartRouter serves both signed-in users and guests; guests are keyed
// by the X-Guest-Session header, whose value comes from POST
// /v1/cart/guest-session.
func SetupCartRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	cartHandler := handler.GetCartHandler()

	cart := e.Group("/v1/cart")
	cart.Use(authMiddleware.OptionalAuth)
	cart.GET("", cartHandler.GetCart)
	cart.DELETE("", cartHandler.ClearCart)
	cart.POST("/items", cartHandler.AddItem)
	cart.PUT("/items/:productId", cartHandler.UpdateItem)
	cart.DELETE("/items/:productId", cartHandler.RemoveItem)
	cart.POST("/guest-session", cartHandler.IssueGuestSession)

	e.POST("/v1/cart/merge", cartHandler.MergeCart, authMiddleware.Authenticate)
}
