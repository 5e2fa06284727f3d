package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/maumeum/internal/middleware/auth"
	"github.com/Skotchmaster/maumeum/internal/service"
	"github.com/Skotchmaster/maumeum/internal/transport"
	"github.com/Skotchmaster/maumeum/pkg/logging"
)

type SessionHTTP struct {
	Svc     *service.SessionService
	Cookies CookieConfig
}

func (h *SessionHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login_failed", err, http.StatusBadRequest)
	}

	c.SetCookie(CreateCookie(auth.AccessCookie, res.AccessToken, "/", res.AccessExp, h.Cookies.AccessTTL, h.Cookies.Secure))
	c.SetCookie(CreateCookie(auth.RefreshCookie, res.RefreshToken, "/", res.RefreshExp, h.Cookies.RefreshTTL, h.Cookies.Secure))

	return c.JSON(http.StatusCreated, echo.Map{
		"data": echo.Map{
			"accessToken":  res.AccessToken,
			"refreshToken": "stored securely",
		},
	})
}

func (h *SessionHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.refresh")

	var token string
	if cookie, err := c.Cookie(auth.RefreshCookie); err == nil {
		token = cookie.Value
	}

	res, err := h.Svc.Refresh(ctx, token)
	if err != nil {
		return fail(l, "refresh_failed", err, http.StatusUnauthorized)
	}

	c.SetCookie(CreateCookie(auth.AccessCookie, res.AccessToken, "/", res.AccessExp, h.Cookies.AccessTTL, h.Cookies.Secure))
	return c.JSON(http.StatusCreated, echo.Map{
		"data": echo.Map{
			"accessToken": res.AccessToken,
		},
	})
}

func (h *SessionHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.logout")

	if cookie, err := c.Cookie(auth.RefreshCookie); err == nil {
		if err := h.Svc.Logout(ctx, cookie.Value); err != nil {
			l.Error("logout_revoke_failed", "error", err)
		}
	}

	c.SetCookie(DeleteCookie(auth.AccessCookie, "/", h.Cookies.Secure))
	c.SetCookie(DeleteCookie(auth.RefreshCookie, "/", h.Cookies.Secure))

	l.Info("logout_successful")
	return c.JSON(http.StatusOK, echo.Map{
		"message": "logged out",
	})
}
