package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/maumeum/pkg/logging"
)

// RequireLogin rejects requests without an access token cookie. A token that
// is expired or malformed still lets the request through, only without an
// identity: handlers that need one must check IdentityFrom themselves.
// Clients are expected to call the refresh endpoint when that happens.
func (g *Gate) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := accessToken(c)
		if !ok {
			return forbidden(c, "access token is missing")
		}

		res := g.Validator.Access(token)
		if !res.OK() {
			logging.FromContext(c.Request().Context()).Debug("access_token_rejected",
				"gate", "require_login", "failure", res.Failure.String())
			return next(c)
		}

		setIdentity(c, res.Claims)
		return next(c)
	}
}
