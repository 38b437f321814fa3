package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/clinicworks/ehr-system/internal/core/domain"
)

const identityKey = "identity"

// SetIdentity attaches a verified identity to the request context.
func SetIdentity(c echo.Context, identity domain.Identity) {
	c.Set(identityKey, identity)
}

// IdentityFrom returns the identity attached by Session, if any.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	identity, ok := c.Get(identityKey).(domain.Identity)
	return identity, ok
}
