package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/sweetshop/sweetshop-api/internal/api/middleware"
	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// currentIdentity returns the caller attached by the Auth middleware. Its
// absence means the route was registered without Auth.
func currentIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok || id.ID == "" {
		return domain.Identity{}, domain.ErrMissingToken
	}
	return id, nil
}
