package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/maumeum/pkg/roles"
	"github.com/Skotchmaster/maumeum/pkg/tokens"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"

	userIDKey = "userID"
	roleKey   = "role"
)

type Identity struct {
	UserID string
	Role   roles.Role
}

// Gate guards routes with the access token cookie. RequireLogin is lenient
// and AdminOnly is strict; see their comments.
type Gate struct {
	Validator *tokens.Validator
}

func NewGate(v *tokens.Validator) *Gate {
	return &Gate{Validator: v}
}

// IdentityFrom returns the identity the gate attached to the request, if any.
func IdentityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(userIDKey).(string)
	if !ok || id == "" {
		return Identity{}, false
	}
	role, _ := c.Get(roleKey).(roles.Role)
	return Identity{UserID: id, Role: role}, true
}

func setIdentity(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(userIDKey, claims.Subject)
	c.Set(roleKey, claims.Role)
}

func forbidden(c echo.Context, reason string) error {
	return c.JSON(http.StatusForbidden, echo.Map{
		"result": "forbidden-approach",
		"reason": reason,
	})
}

func accessToken(c echo.Context) (string, bool) {
	cookie, err := c.Cookie(AccessCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
