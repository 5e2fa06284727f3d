package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/maumeum/internal/middleware/auth"
	"github.com/Skotchmaster/maumeum/internal/service"
	"github.com/Skotchmaster/maumeum/internal/transport"
	"github.com/Skotchmaster/maumeum/pkg/logging"
)

type UserHTTP struct {
	Svc     *service.UserService
	Cookies CookieConfig
}

// identity is required on routes behind the lenient gate, which may pass
// requests with an expired or malformed token.
func identity(c echo.Context) (auth.Identity, error) {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		return auth.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}
	return id, nil
}

func (h *UserHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "register_failed", err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": user})
}

func (h *UserHTTP) CheckEmail(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.check_email")

	var req transport.EmailCheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := h.Svc.CheckEmail(ctx, req.Email); err != nil {
		return fail(l, "check_email_failed", err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusOK, echo.Map{"available": true})
}

func (h *UserHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.me")

	id, err := identity(c)
	if err != nil {
		return err
	}
	user, err := h.Svc.Profile(ctx, id.UserID)
	if err != nil {
		return fail(l, "profile_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": user})
}

func (h *UserHTTP) PatchMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.patch_me")

	id, err := identity(c)
	if err != nil {
		return err
	}
	var req transport.PatchUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_user_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.UpdateProfile(ctx, id.UserID, req)
	if err != nil {
		return fail(l, "patch_user_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": user})
}

func (h *UserHTTP) CheckPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.check_password")

	id, err := identity(c)
	if err != nil {
		return err
	}
	var req transport.PasswordCheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := h.Svc.CheckPassword(ctx, id.UserID, req.Password); err != nil {
		return fail(l, "check_password_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{"matched": true})
}

func (h *UserHTTP) DeleteMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete_me")

	id, err := identity(c)
	if err != nil {
		return err
	}
	var req transport.DisableUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := h.Svc.Disable(ctx, id.UserID, req.Email, req.Password); err != nil {
		return fail(l, "disable_failed", err, http.StatusBadRequest)
	}

	c.SetCookie(DeleteCookie(auth.AccessCookie, "/", h.Cookies.Secure))
	c.SetCookie(DeleteCookie(auth.RefreshCookie, "/", h.Cookies.Secure))
	return c.JSON(http.StatusOK, echo.Map{"message": "account disabled"})
}

func (h *UserHTTP) ListDisabled(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_disabled")

	users, err := h.Svc.ListDisabled(ctx)
	if err != nil {
		return fail(l, "list_disabled_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": users})
}

func (h *UserHTTP) SetRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.set_role")

	var req transport.RoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := h.Svc.SetRole(ctx, c.Param("id"), req.Role); err != nil {
		return fail(l, "set_role_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id"), "role": req.Role})
}

func (h *UserHTTP) ReportStanding(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.report_standing")

	standing, err := h.Svc.ReportStanding(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "report_standing_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": standing})
}

func (h *UserHTTP) SetReportedTimes(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.set_reported_times")

	var req transport.ReportedTimesRequest
	if err := c.Bind(&req); err != nil || req.ReportedTimes == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "reportedTimes is required")
	}
	standing, err := h.Svc.SetReportedTimes(ctx, c.Param("id"), *req.ReportedTimes)
	if err != nil {
		return fail(l, "set_reported_times_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": standing})
}
