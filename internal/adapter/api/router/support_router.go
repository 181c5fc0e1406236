package router

import (
	"github.com/labstack/echo/v4"

	"vendora/internal/adapter/api/handler"
	"vendora/internal/adapter/api/middleware"
	"vendora/internal/infrastructure/ratelimit"
)

func SetupSupportRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimit *middleware.RateLimitMiddleware) {
	supportHandler := handler.GetSupportHandler()
	ticketHandler := handler.GetTicketHandler()

	chat := e.Group("/v1/support/chat")
	chat.Use(authMiddleware.OptionalAuth)
	chat.POST("", supportHandler.Chat, rateLimit.Limit(ratelimit.ActionSupportChat))
	chat.GET("/:id", supportHandler.GetSession)

	tickets := e.Group("/v1/support/tickets")
	tickets.Use(authMiddleware.Authenticate)
	tickets.POST("", ticketHandler.CreateTicket)
	tickets.GET("", ticketHandler.ListMyTickets)
	tickets.GET("/:id", ticketHandler.GetTicket)
	tickets.POST("/:id/messages", ticketHandler.Reply)
	tickets.PUT("/:id/status", ticketHandler.UpdateStatus)

	staff := e.Group("/v1/admin/tickets")
	staff.Use(authMiddleware.Authenticate, middleware.StaffOnly())
	staff.GET("", ticketHandler.ListAllTickets)
}
