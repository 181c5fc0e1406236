package router

import (
	"github.com/labstack/echo/v4"

	"vendora/internal/adapter/api/handler"
	"vendora/internal/adapter/api/middleware"
	"vendora/internal/infrastructure/ratelimit"
)

func SetupOrderRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimit *middleware.RateLimitMiddleware) {
	checkoutHandler := handler.GetCheckoutHandler()
	orderHandler := handler.GetOrderHandler()

	e.POST("/v1/checkout", checkoutHandler.Checkout,
		authMiddleware.Authenticate, rateLimit.Limit(ratelimit.ActionCheckout))

	orders := e.Group("/v1/orders")
	orders.Use(authMiddleware.Authenticate)
	orders.GET("", orderHandler.ListMyOrders)
	orders.GET("/:id", orderHandler.GetOrder)
	orders.PUT("/:id/status", orderHandler.UpdateStatus)

	vendor := e.Group("/v1/vendor/orders")
	vendor.Use(authMiddleware.Authenticate, middleware.VendorOnly())
	vendor.GET("", orderHandler.ListVendorOrders)
	vendor.GET("/export", orderHandler.ExportVendorOrders)

	admin := e.Group("/v1/admin/orders")
	admin.Use(authMiddleware.Authenticate, middleware.AdminOnly())
	admin.GET("", orderHandler.ListAllOrders)
}
