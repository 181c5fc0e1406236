package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"vendora/internal/domain/entity"
	"vendora/internal/domain/repository"
	"vendora/pkg/errors"
)

const (
	UserIDKey = "uid"
	UserKey   = "user"
)

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	userRepo repository.UserRepository
	logger   *zap.Logger
}

func NewAuthMiddleware(verifier TokenVerifier, userRepo repository.UserRepository, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{
		verifier: verifier,
		userRepo: userRepo,
		logger:   logger,
	}
}

// Authenticate rejects requests without a valid token. The resolved uid and
// user profile are stored on the context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := bearerToken(c)
		if err != nil {
			return err
		}
		if err := m.resolve(c, token); err != nil {
			return err
		}
		return next(c)
	}
}

// OptionalAuth resolves the caller when a valid token is present and lets
// anonymous requests through otherwise.
func (m *AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := bearerToken(c)
		if err != nil {
			return next(c)
		}
		if err := m.resolve(c, token); err != nil {
			m.logger.Debug("ignoring invalid optional token", zap.Error(err))
		}
		return next(c)
	}
}

func (m *AuthMiddleware) resolve(c echo.Context, token string) error {
	ctx := c.Request().Context()

	uid, err := m.verifier.VerifyToken(ctx, token)
	if err != nil {
		return errors.Unauthorized("Invalid or expired token", err)
	}

	user, err := m.userRepo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return errors.Unauthorized("User profile not found", err)
		}
		return err
	}

	c.Set(UserIDKey, uid)
	c.Set(UserKey, user)
	return nil
}

// bearerToken reads the Authorization header. Browsers cannot set headers
// on a websocket handshake, so a "token" query parameter is accepted too.
func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		if token := c.QueryParam("token"); token != "" && c.IsWebSocket() {
			return token, nil
		}
		return "", errors.Unauthorized("Authorization header is required", nil)
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errors.Unauthorized("Invalid authorization format", nil)
	}
	return strings.TrimSpace(parts[1]), nil
}

// CurrentUser returns the authenticated user, if any.
func CurrentUser(c echo.Context) (*entity.User, bool) {
	user, ok := c.Get(UserKey).(*entity.User)
	return user, ok && user != nil
}

func CurrentUserID(c echo.Context) string {
	uid, _ := c.Get(UserIDKey).(string)
	return uid
}
