package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Failure int

const (
	FailureNone Failure = iota
	// FailureMalformed covers anything that prevents trusting the token:
	// bad encoding, wrong signature or algorithm, claims outside the schema.
	FailureMalformed
	// FailureExpired means the signature checked out but exp has passed.
	FailureExpired
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureMalformed:
		return "malformed"
	case FailureExpired:
		return "expired"
	}
	return "unknown"
}

type Result[C any] struct {
	Claims  C
	Failure Failure
	Err     error
}

func (r Result[C]) OK() bool { return r.Failure == FailureNone }

type claimsValidator interface {
	jwt.Claims
	Validate() error
}

func ValidateAccess(tokenStr string, secret []byte, now time.Time) Result[*AccessClaims] {
	return validate(tokenStr, secret, now, &AccessClaims{})
}

func ValidateRefresh(tokenStr string, secret []byte, now time.Time) Result[*RefreshClaims] {
	return validate(tokenStr, secret, now, &RefreshClaims{})
}

func validate[C claimsValidator](tokenStr string, secret []byte, now time.Time, claims C) Result[C] {
	var zero C
	if tokenStr == "" {
		return Result[C]{Claims: zero, Failure: FailureMalformed, Err: jwt.ErrTokenMalformed}
	}

	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err == nil {
		return Result[C]{Claims: claims}
	}

	if errors.Is(err, jwt.ErrTokenExpired) && claims.Validate() == nil {
		return Result[C]{Claims: zero, Failure: FailureExpired, Err: err}
	}
	return Result[C]{Claims: zero, Failure: FailureMalformed, Err: err}
}

// Validator binds the two secrets and a clock for callers in the request path.
type Validator struct {
	AccessSecret  []byte
	RefreshSecret []byte
	Now           func() time.Time
}

func NewValidator(accessSecret, refreshSecret []byte) *Validator {
	return &Validator{AccessSecret: accessSecret, RefreshSecret: refreshSecret, Now: time.Now}
}

func (v *Validator) now() time.Time {
	if v.Now == nil {
		return time.Now()
	}
	return v.Now()
}

func (v *Validator) Access(tokenStr string) Result[*AccessClaims] {
	return ValidateAccess(tokenStr, v.AccessSecret, v.now())
}

func (v *Validator) Refresh(tokenStr string) Result[*RefreshClaims] {
	return ValidateRefresh(tokenStr, v.RefreshSecret, v.now())
}
