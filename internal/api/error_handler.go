package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// errorResponse is the error envelope of every 4xx/5xx answer. Errors is
// only present for validation failures.
type errorResponse struct {
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

// NewHTTPErrorHandler maps domain errors to status codes and renders them
// as errorResponse. Anything unrecognised is logged with its cause and
// answered with a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	if ve, ok := domain.AsValidationError(err); ok {
		return http.StatusBadRequest, errorResponse{Message: ve.DisplayMessage(), Errors: ve.Fields}
	}

	switch {
	case errors.Is(err, domain.ErrMissingToken):
		return http.StatusUnauthorized, errorResponse{Message: "Authentication required"}
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, errorResponse{Message: "Invalid or expired token"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Message: "Admin access required"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Message: "Invalid username or password"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, errorResponse{Message: "Username already exists"}
	case errors.Is(err, domain.ErrSweetNotFound):
		return http.StatusNotFound, errorResponse{Message: "Sweet not found"}
	case errors.Is(err, domain.ErrOutOfStock):
		return http.StatusBadRequest, errorResponse{Message: "Item is out of stock"}
	}

	// Router 404/405, body limits and the like.
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		return he.Code, errorResponse{Message: fmt.Sprint(he.Message)}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Message: "Internal server error"}
}
