package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
)

// IdentityKey is the echo context key under which Auth stores the caller.
const IdentityKey = "identity"

const bearerPrefix = "Bearer "

// Auth requires a valid bearer token. On success the caller's identity is
// attached to both the echo context and the request context.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return domain.ErrMissingToken
			}

			token := strings.TrimSpace(header[len(bearerPrefix):])
			if token == "" {
				return domain.ErrMissingToken
			}

			id, ok := verifier.Verify(token)
			if !ok {
				return domain.ErrInvalidToken
			}

			c.Set(IdentityKey, id)
			req := c.Request()
			c.SetRequest(req.WithContext(domain.WithIdentity(req.Context(), id)))

			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by Auth.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(IdentityKey).(domain.Identity)
	return id, ok
}
