package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"vendora/internal/domain/entity"
	"vendora/internal/domain/repository"
	"vendora/internal/infrastructure/firebase"
	"vendora/pkg/errors"
	"vendora/pkg/response"
)

type DevTokenHandler struct {
	issuer   *firebase.DevTokenIssuer
	userRepo repository.UserRepository
}

var devTokenHandler *DevTokenHandler

func NewDevTokenHandler(issuer *firebase.DevTokenIssuer, userRepo repository.UserRepository) *DevTokenHandler {
	return &DevTokenHandler{
		issuer:   issuer,
		userRepo: userRepo,
	}
}

func SetupDevTokenHandler(issuer *firebase.DevTokenIssuer, userRepo repository.UserRepository) {
	devTokenHandler = NewDevTokenHandler(issuer, userRepo)
}

func GetDevTokenHandler() *DevTokenHandler {
	return devTokenHandler
}

type devTokenRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email" validate:"omitempty,email"`
	Role   string `json:"role" validate:"omitempty,oneof=customer vendor admin csa"`
}

// IssueToken signs a development token for an existing user, picked by id,
// by email, or as the first user holding a role.
func (h *DevTokenHandler) IssueToken(c echo.Context) error {
	var req devTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.findUser(c, req)
	if err != nil {
		return response.Error(c, err)
	}

	token, expiresAt, err := h.issuer.Issue(user.ID, user.Role)
	if err != nil {
		return response.Error(c, errors.Internal("Failed to sign token", err))
	}

	return response.Success(c, map[string]interface{}{
		"token":      token,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
		"user":       user,
	})
}

func (h *DevTokenHandler) findUser(c echo.Context, req devTokenRequest) (*entity.User, error) {
	ctx := c.Request().Context()
	switch {
	case req.UserID != "":
		return h.userRepo.GetByID(ctx, req.UserID)
	case req.Email != "":
		return h.userRepo.GetByEmail(ctx, req.Email)
	case req.Role != "":
		users, err := h.userRepo.ListByRole(ctx, req.Role, 1)
		if err != nil {
			return nil, err
		}
		if len(users) == 0 {
			return nil, errors.NotFound("User with role "+req.Role, nil)
		}
		return users[0], nil
	}
	return nil, errors.Validation("user_id, email or role is required")
}
