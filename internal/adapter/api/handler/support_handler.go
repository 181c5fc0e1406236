package handler

import (
	"github.com/labstack/echo/v4"

	"vendora/internal/adapter/api/middleware"
	"vendora/internal/usecase"
	"vendora/pkg/errors"
	"vendora/pkg/response"
)

type SupportHandler struct {
	supportUseCase *usecase.SupportUseCase
}

func NewSupportHandler(supportUseCase *usecase.SupportUseCase) *SupportHandler {
	return &SupportHandler{
		supportUseCase: supportUseCase,
	}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" validate:"required,max=2000"`
}

// Chat answers one support message. Signed-out visitors may chat too.
func (h *SupportHandler) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	query := usecase.SupportQuery{SessionID: req.SessionID, Message: req.Message}
	if user, ok := middleware.CurrentUser(c); ok {
		query.Context = usecase.SupportContext{UserID: user.ID, Role: user.Role, Email: user.Email}
	}

	reply, err := h.supportUseCase.Ask(c.Request().Context(), query)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, reply)
}

func (h *SupportHandler) GetSession(c echo.Context) error {
	session, err := h.supportUseCase.GetSession(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, session)
}
