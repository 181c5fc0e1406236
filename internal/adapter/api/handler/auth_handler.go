package handler

import (
	"github.com/labstack/echo/v4"

	"vendora/internal/adapter/api/middleware"
	"vendora/internal/usecase"
	"vendora/pkg/errors"
	"vendora/pkg/response"
)

// GuestSessionHeader carries the anonymous cart id of a signed-out browser.
const GuestSessionHeader = "X-Guest-Session"

type AuthHandler struct {
	authUseCase *usecase.AuthUseCase
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"required,min=2"`
	Phone       string `json:"phone" validate:"omitempty,e164"`
	Role        string `json:"role" validate:"omitempty,oneof=customer vendor"`
	VendorName  string `json:"vendor_name"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type setRoleRequest struct {
	Role       string `json:"role" validate:"required,oneof=customer vendor admin csa"`
	VendorName string `json:"vendor_name"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.Register(c.Request().Context(), usecase.RegisterInput{
		Email:          req.Email,
		Password:       req.Password,
		DisplayName:    req.DisplayName,
		Phone:          req.Phone,
		Role:           req.Role,
		VendorName:     req.VendorName,
		GuestSessionID: c.Request().Header.Get(GuestSessionHeader),
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, result)
}

// Login signs in and merges the caller's guest cart, if the request carries one.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.Login(c.Request().Context(), req.Email, req.Password, c.Request().Header.Get(GuestSessionHeader))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authUseCase.Logout(c.Request().Context(), middleware.CurrentUserID(c)); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Signed out"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}
	return response.Success(c, user)
}

func (h *AuthHandler) SetRole(c echo.Context) error {
	var req setRoleRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.authUseCase.SetRole(c.Request().Context(), c.Param("id"), req.Role, req.VendorName)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}
