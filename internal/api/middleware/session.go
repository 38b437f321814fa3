package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/clinicworks/ehr-system/internal/core/domain"
	"github.com/clinicworks/ehr-system/internal/core/ports"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "token"

// Session verifies the session cookie and attaches the caller's identity.
// A missing cookie yields domain.ErrUnauthenticated; a cookie that fails
// verification yields domain.ErrInvalidToken.
func Session(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				return domain.ErrUnauthenticated
			}

			identity, err := verifier.Verify(cookie.Value)
			if err != nil {
				return domain.ErrInvalidToken
			}

			SetIdentity(c, identity)
			return next(c)
		}
	}
}
