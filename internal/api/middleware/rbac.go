package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// RBAC lets the request through only when the caller's role is one of
// allowedRoles. It must run after Auth; a request without an identity is
// refused and logged, since that means the route was wired without Auth.
func RBAC(log zerolog.Logger, allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				log.Error().
					Str("method", c.Request().Method).
					Str("path", c.Path()).
					Msg("role check reached without an authenticated identity")
				return domain.ErrForbidden
			}
			if _, ok := allowed[id.Role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// RequireAdmin is RBAC restricted to the admin role.
func RequireAdmin(log zerolog.Logger) echo.MiddlewareFunc {
	return RBAC(log, domain.RoleAdmin)
}
