package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendora/internal/domain/entity"
	"vendora/internal/infrastructure/ratelimit"
	"vendora/pkg/errors"
	"vendora/pkg/response"
)

type stubVerifier map[string]string

func (v stubVerifier) VerifyToken(_ context.Context, token string) (string, error) {
	if uid, ok := v[token]; ok {
		return uid, nil
	}
	return "", fmt.Errorf("token rejected")
}

type stubUsers map[string]*entity.User

func (s stubUsers) Create(context.Context, *entity.User) error { return nil }
func (s stubUsers) Update(context.Context, *entity.User) error { return nil }

func (s stubUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, errors.NotFound("User", nil)
}

func (s stubUsers) GetByEmail(context.Context, string) (*entity.User, error) {
	return nil, errors.NotFound("User", nil)
}

func (s stubUsers) ListByRole(context.Context, string, int) ([]*entity.User, error) {
	return nil, nil
}

func newAuth() *AuthMiddleware {
	return NewAuthMiddleware(
		stubVerifier{"cust-token": "c1", "vendor-token": "v1", "orphan-token": "ghost"},
		stubUsers{
			"c1": {ID: "c1", Role: entity.RoleCustomer},
			"v1": {ID: "v1", Role: entity.RoleVendor},
		},
		nil,
	)
}

func whoAmI(c echo.Context) error {
	uid := CurrentUserID(c)
	if uid == "" {
		uid = "anonymous"
	}
	return c.String(http.StatusOK, uid)
}

func serve(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = response.HTTPErrorHandler
	return e
}

func TestAuthenticate(t *testing.T) {
	e := newEcho()
	e.GET("/me", whoAmI, newAuth().Authenticate)

	tests := []struct {
		name   string
		token  string
		header string
		status int
		body   string
	}{
		{"valid token", "cust-token", "", http.StatusOK, "c1"},
		{"missing header", "", "", http.StatusUnauthorized, ""},
		{"unknown token", "bogus", "", http.StatusUnauthorized, ""},
		{"no profile", "orphan-token", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "", "Basic abc", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.token != "" {
				req.Header.Set(echo.HeaderAuthorization, "Bearer "+tt.token)
			}
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	e := newEcho()
	e.GET("/cart", whoAmI, newAuth().OptionalAuth)

	assert.Equal(t, "anonymous", serve(e, http.MethodGet, "/cart", "").Body.String())
	assert.Equal(t, "anonymous", serve(e, http.MethodGet, "/cart", "bogus").Body.String())
	assert.Equal(t, "c1", serve(e, http.MethodGet, "/cart", "cust-token").Body.String())
}

func TestWebSocketQueryToken(t *testing.T) {
	e := newEcho()
	e.GET("/ws", whoAmI, newAuth().Authenticate)

	req := httptest.NewRequest(http.MethodGet, "/ws?token=cust-token", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "query tokens are only honoured on upgrades")

	req = httptest.NewRequest(http.MethodGet, "/ws?token=cust-token", nil)
	req.Header.Set(echo.HeaderConnection, "Upgrade")
	req.Header.Set(echo.HeaderUpgrade, "websocket")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c1", rec.Body.String())
}

func TestRequireRoles(t *testing.T) {
	auth := newAuth()
	e := newEcho()
	e.GET("/vendor", whoAmI, auth.Authenticate, VendorOnly())
	e.GET("/admin", whoAmI, auth.Authenticate, AdminOnly())
	e.GET("/unauthenticated", whoAmI, StaffOnly())

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/vendor", "vendor-token").Code)
	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, "/vendor", "cust-token").Code)
	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, "/admin", "vendor-token").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/unauthenticated", "").Code)
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewRateLimiterWithPolicies(map[string]ratelimit.Policy{
		ratelimit.ActionCheckout: {Every: time.Hour, Burst: 2},
	})
	auth := newAuth()
	e := newEcho()
	e.POST("/checkout", whoAmI, auth.Authenticate, NewRateLimitMiddleware(limiter, nil).Limit(ratelimit.ActionCheckout))

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/checkout", "cust-token").Code)
	}

	rec := serve(e, http.MethodPost, "/checkout", "cust-token")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/checkout", "vendor-token").Code, "buckets are per user")
}
