package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/maumeum/internal/service"
)

// statusFor maps service errors to HTTP codes. ErrAuthentication means
// different things per endpoint, so the caller supplies its code.
func statusFor(err error, authStatus int) int {
	switch {
	case errors.Is(err, service.ErrAuthentication):
		return authStatus
	case errors.Is(err, service.ErrAuthorization), errors.Is(err, service.ErrSessionExpired):
		return http.StatusForbidden
	case errors.Is(err, service.ErrArgument):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrResourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func fail(l *slog.Logger, event string, err error, authStatus int) error {
	code := statusFor(err, authStatus)
	if code >= http.StatusInternalServerError {
		l.Error(event, "status", code, "error", err)
		return echo.NewHTTPError(code, "internal server error")
	}
	l.Warn(event, "status", code, "error", err)
	return echo.NewHTTPError(code, err.Error())
}
