package handler

import (
	"github.com/labstack/echo/v4"

	"vendora/internal/adapter/api/middleware"
	"vendora/internal/usecase"
	"vendora/pkg/response"
	"vendora/pkg/utils"
)

type NotificationHandler struct {
	notificationUseCase *usecase.NotificationUseCase
}

func NewNotificationHandler(notificationUseCase *usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
	}
}

func (h *NotificationHandler) List(c echo.Context) error {
	notifications, err := h.notificationUseCase.List(
		c.Request().Context(),
		middleware.CurrentUserID(c),
		utils.GetBoolParam(c, "unread"),
		utils.GetLimitParam(c),
	)
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, notifications, len(notifications))
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	if err := h.notificationUseCase.MarkRead(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	count, err := h.notificationUseCase.MarkAllRead(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]int{"updated": count})
}
