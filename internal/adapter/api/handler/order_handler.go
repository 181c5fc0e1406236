package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"vendora/internal/adapter/api/middleware"
	"vendora/internal/usecase"
	"vendora/pkg/errors"
	"vendora/pkg/response"
	"vendora/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type OrderHandler struct {
	orderUseCase *usecase.OrderUseCase
}

func NewOrderHandler(orderUseCase *usecase.OrderUseCase) *OrderHandler {
	return &OrderHandler{
		orderUseCase: orderUseCase,
	}
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

func (h *OrderHandler) ListMyOrders(c echo.Context) error {
	orders, err := h.orderUseCase.ListCustomerOrders(c.Request().Context(), middleware.CurrentUserID(c), utils.GetLimitParam(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, orders, len(orders))
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	order, err := h.orderUseCase.GetOrder(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, order)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	var req updateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	order, err := h.orderUseCase.UpdateStatus(c.Request().Context(), user, c.Param("id"), req.Status)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, order)
}

func (h *OrderHandler) ListVendorOrders(c echo.Context) error {
	orders, err := h.orderUseCase.ListVendorOrders(c.Request().Context(), middleware.CurrentUserID(c), c.QueryParam("status"), utils.GetLimitParam(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, orders, len(orders))
}

func (h *OrderHandler) ExportVendorOrders(c echo.Context) error {
	data, err := h.orderUseCase.ExportVendorOrders(c.Request().Context(), middleware.CurrentUserID(c), c.QueryParam("status"))
	if err != nil {
		return response.Error(c, err)
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, xlsxContentType, data)
}

func (h *OrderHandler) ListAllOrders(c echo.Context) error {
	orders, err := h.orderUseCase.ListAllOrders(c.Request().Context(), c.QueryParam("status"), utils.GetLimitParam(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, orders, len(orders))
}
