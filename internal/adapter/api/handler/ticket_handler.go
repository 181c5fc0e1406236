package handler

import (
	"github.com/labstack/echo/v4"

	"vendora/internal/adapter/api/middleware"
	"vendora/internal/usecase"
	"vendora/pkg/errors"
	"vendora/pkg/response"
	"vendora/pkg/utils"
)

type TicketHandler struct {
	ticketUseCase *usecase.TicketUseCase
}

func NewTicketHandler(ticketUseCase *usecase.TicketUseCase) *TicketHandler {
	return &TicketHandler{
		ticketUseCase: ticketUseCase,
	}
}

type createTicketRequest struct {
	Subject     string `json:"subject" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	VendorID    string `json:"vendor_id"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

type ticketMessageRequest struct {
	Message string `json:"message" validate:"required"`
}

type ticketStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open in-progress resolved closed"`
}

func (h *TicketHandler) CreateTicket(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	var req createTicketRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	ticket, err := h.ticketUseCase.CreateTicket(c.Request().Context(), user, usecase.CreateTicketInput{
		Subject:     req.Subject,
		Description: req.Description,
		VendorID:    req.VendorID,
		Priority:    req.Priority,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, ticket)
}

func (h *TicketHandler) ListMyTickets(c echo.Context) error {
	tickets, err := h.ticketUseCase.ListCustomerTickets(c.Request().Context(), middleware.CurrentUserID(c), c.QueryParam("status"), utils.GetLimitParam(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, tickets, len(tickets))
}

func (h *TicketHandler) ListAllTickets(c echo.Context) error {
	tickets, err := h.ticketUseCase.ListAllTickets(c.Request().Context(), c.QueryParam("status"), utils.GetLimitParam(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, tickets, len(tickets))
}

func (h *TicketHandler) GetTicket(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	ticket, err := h.ticketUseCase.GetTicket(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, ticket)
}

func (h *TicketHandler) Reply(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	var req ticketMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	ticket, err := h.ticketUseCase.Reply(c.Request().Context(), user, c.Param("id"), req.Message)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, ticket)
}

func (h *TicketHandler) UpdateStatus(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	var req ticketStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	ticket, err := h.ticketUseCase.UpdateStatus(c.Request().Context(), user, c.Param("id"), req.Status)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, ticket)
}
