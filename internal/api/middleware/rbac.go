package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/clinicworks/ehr-system/internal/core/domain"
)

// RequireRoles admits requests whose identity holds one of roles. Requests
// without an identity are refused the same way.
func RequireRoles(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return domain.ErrInsufficientPermissions
			}
			if _, ok := allowed[identity.Role]; !ok {
				return domain.ErrInsufficientPermissions
			}
			return next(c)
		}
	}
}
