package tokens

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Skotchmaster/maumeum/pkg/roles"
)

// AccessClaims is the payload of an access token: identity and role.
type AccessClaims struct {
	Role roles.Role `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. It never carries a role,
// so a role change cannot be replayed through an old refresh token.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

var errMissingSubject = errors.New("missing sub claim")

func (c *AccessClaims) UnmarshalJSON(b []byte) error {
	type plain AccessClaims
	var p plain
	if err := decodeStrict(b, &p); err != nil {
		return err
	}
	*c = AccessClaims(p)
	return nil
}

// Validate is called by the jwt parser after the registered claims pass.
func (c *AccessClaims) Validate() error {
	if c.Subject == "" {
		return errMissingSubject
	}
	if !c.Role.Valid() {
		return fmt.Errorf("unknown role %q", c.Role)
	}
	return nil
}

func (c *RefreshClaims) UnmarshalJSON(b []byte) error {
	type plain RefreshClaims
	var p plain
	if err := decodeStrict(b, &p); err != nil {
		return err
	}
	*c = RefreshClaims(p)
	return nil
}

func (c *RefreshClaims) Validate() error {
	if c.Subject == "" {
		return errMissingSubject
	}
	return nil
}

func decodeStrict(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
