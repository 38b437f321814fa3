package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/clinicworks/ehr-system/internal/api/middleware"
	"github.com/clinicworks/ehr-system/internal/core/domain"
)

// ctxIdentity returns the identity attached by the Session middleware. Its
// absence means the route was mounted without a session and is refused.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return identity, nil
}
