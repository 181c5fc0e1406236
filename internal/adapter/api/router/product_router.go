package router

import (
	"github.com/labstack/echo/v4"

	"vendora/internal/adapter/api/handler"
	"vendora/internal/adapter/api/middleware"
)

func SetupProductRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	productHandler := handler.GetProductHandler()

	products := e.Group("/v1/products")
	products.GET("", productHandler.ListProducts)
	products.GET("/:id", productHandler.GetProduct)

	vendor := e.Group("/v1/vendor/products")
	vendor.Use(authMiddleware.Authenticate, middleware.VendorOnly())
	vendor.GET("", productHandler.ListMyProducts)
	vendor.POST("", productHandler.CreateProduct)
	vendor.PUT("/:id", productHandler.UpdateProduct)
	vendor.DELETE("/:id", productHandler.DeactivateProduct)
	vendor.POST("/:id/images", productHandler.UploadImage)
}
