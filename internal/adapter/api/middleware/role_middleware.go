package middleware

import (
	"github.com/labstack/echo/v4"

	"vendora/internal/domain/entity"
	"vendora/pkg/errors"
)

// RequireRoles must run after Authenticate.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return errors.Unauthorized("Authentication required", nil)
			}
			if _, ok := allowed[user.Role]; !ok {
				return errors.Forbidden("You do not have permission to access this resource", nil)
			}
			return next(c)
		}
	}
}

func AdminOnly() echo.MiddlewareFunc {
	return RequireRoles(entity.RoleAdmin)
}

func VendorOnly() echo.MiddlewareFunc {
	return RequireRoles(entity.RoleVendor, entity.RoleAdmin)
}

func StaffOnly() echo.MiddlewareFunc {
	return RequireRoles(entity.RoleAdmin, entity.RoleCSA)
}
