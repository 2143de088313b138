package httpserver

import (
	"errors"
	"net/http"

	"github.com/Skotchmaster/vayez/internal/service"
	"github.com/labstack/echo/v4"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// httpError translates a service error. Causes of internal errors are logged
// by the service and never reach the response.
func httpError(err error) *echo.HTTPError {
	return echo.NewHTTPError(statusFor(err), service.PublicMessage(err))
}
