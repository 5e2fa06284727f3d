package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/maumeum/pkg/logging"
	"github.com/Skotchmaster/maumeum/pkg/roles"
)

// AdminOnly lets a request through only with a valid access token whose role
// is admin.
func (g *Gate) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("gate", "admin_only")

		token, ok := accessToken(c)
		if !ok {
			return forbidden(c, "access token is missing")
		}

		res := g.Validator.Access(token)
		if !res.OK() {
			l.Warn("access_token_rejected", "status", 403, "failure", res.Failure.String())
			return forbidden(c, "access token is "+res.Failure.String())
		}
		if res.Claims.Role != roles.Admin {
			l.Warn("access_denied", "status", 403, "user_id", res.Claims.Subject, "role", res.Claims.Role)
			return forbidden(c, "you don't have enough rights")
		}

		setIdentity(c, res.Claims)
		return next(c)
	}
}
