package handler

import (
	"vendora/internal/usecase"
)

var (
	authHandler         *AuthHandler
	productHandler      *ProductHandler
	cartHandler         *CartHandler
	checkoutHandler     *CheckoutHandler
	orderHandler        *OrderHandler
	supportHandler      *SupportHandler
	ticketHandler       *TicketHandler
	notificationHandler *NotificationHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	productUseCase *usecase.ProductUseCase,
	cartUseCase *usecase.CartUseCase,
	checkoutUseCase *usecase.CheckoutUseCase,
	orderUseCase *usecase.OrderUseCase,
	supportUseCase *usecase.SupportUseCase,
	ticketUseCase *usecase.TicketUseCase,
	notificationUseCase *usecase.NotificationUseCase,
) {
	authHandler = NewAuthHandler(authUseCase)
	productHandler = NewProductHandler(productUseCase)
	cartHandler = NewCartHandler(cartUseCase)
	checkoutHandler = NewCheckoutHandler(checkoutUseCase)
	orderHandler = NewOrderHandler(orderUseCase)
	supportHandler = NewSupportHandler(supportUseCase)
	ticketHandler = NewTicketHandler(ticketUseCase)
	notificationHandler = NewNotificationHandler(notificationUseCase)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetProductHandler() *ProductHandler {
	return productHandler
}

func GetCartHandler() *CartHandler {
	return cartHandler
}

func GetCheckoutHandler() *CheckoutHandler {
	return checkoutHandler
}

func GetOrderHandler() *OrderHandler {
	return orderHandler
}

func GetSupportHandler() *SupportHandler {
	return supportHandler
}

func GetTicketHandler() *TicketHandler {
	return ticketHandler
}

func GetNotificationHandler() *NotificationHandler {
	return notificationHandler
}
