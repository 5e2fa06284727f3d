package tokens

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/maumeum/pkg/roles"
)

var (
	testAccessSecret  = []byte("test-access-secret")
	testRefreshSecret = []byte("test-refresh-secret")
)

func newTestIssuer(now time.Time) *Issuer {
	iss := NewIssuer(testAccessSecret, testRefreshSecret, time.Hour, 14*24*time.Hour)
	iss.Now = func() time.Time { return now }
	return iss
}

func TestIssuer_AccessRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Now()
	iss := newTestIssuer(now)
	userID := uuid.NewString()

	token, exp, err := iss.IssueAccess(userID, roles.Admin)
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 3)
	assert.WithinDuration(t, now.Add(time.Hour), exp, time.Second)

	res := ValidateAccess(token, testAccessSecret, now)
	require.True(t, res.OK(), "unexpected failure: %v", res.Err)
	assert.Equal(t, userID, res.Claims.Subject)
	assert.Equal(t, roles.Admin, res.Claims.Role)
	assert.WithinDuration(t, exp, res.Claims.ExpiresAt.Time, time.Second)
}

func TestIssuer_RefreshRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Now()
	iss := newTestIssuer(now)
	userID := uuid.NewString()

	token, exp, err := iss.IssueRefresh(userID)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(14*24*time.Hour), exp, time.Second)

	res := ValidateRefresh(token, testRefreshSecret, now)
	require.True(t, res.OK(), "unexpected failure: %v", res.Err)
	assert.Equal(t, userID, res.Claims.Subject)
	assert.NotEmpty(t, res.Claims.ID)

	payload := decodePayload(t, token)
	assert.NotContains(t, payload, "role")
}

func TestIssuer_RefreshTokensAreDistinct(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer(time.Now())
	a, _, err := iss.IssueRefresh("u1")
	require.NoError(t, err)
	b, _, err := iss.IssueRefresh("u1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestValidate_WrongSecretIsMalformed(t *testing.T) {
	t.Parallel()

	now := time.Now()
	iss := newTestIssuer(now)

	access, _, err := iss.IssueAccess("u1", roles.User)
	require.NoError(t, err)
	refresh, _, err := iss.IssueRefresh("u1")
	require.NoError(t, err)

	assert.Equal(t, FailureMalformed, ValidateAccess(access, []byte("other"), now).Failure)
	assert.Equal(t, FailureMalformed, ValidateRefresh(refresh, []byte("other"), now).Failure)

	// each kind only verifies with its own secret
	assert.Equal(t, FailureMalformed, ValidateAccess(refresh, testAccessSecret, now).Failure)
	assert.Equal(t, FailureMalformed, ValidateRefresh(access, testRefreshSecret, now).Failure)
}

func TestValidate_ExpiredAccessToken(t *testing.T) {
	t.Parallel()

	now := time.Now()
	iss := NewIssuer(testAccessSecret, testRefreshSecret, time.Second, time.Hour)
	iss.Now = func() time.Time { return now }

	token, _, err := iss.IssueAccess("u1", roles.User)
	require.NoError(t, err)

	res := ValidateAccess(token, testAccessSecret, now.Add(2*time.Second))
	assert.False(t, res.OK())
	assert.Equal(t, FailureExpired, res.Failure)
	assert.Nil(t, res.Claims)
	assert.ErrorIs(t, res.Err, jwt.ErrTokenExpired)
}

func TestValidate_ExpiredWithWrongSecretIsMalformed(t *testing.T) {
	t.Parallel()

	now := time.Now()
	iss := NewIssuer(testAccessSecret, testRefreshSecret, time.Second, time.Hour)
	iss.Now = func() time.Time { return now }

	token, _, err := iss.IssueAccess("u1", roles.User)
	require.NoError(t, err)

	res := ValidateAccess(token, []byte("other"), now.Add(time.Hour))
	assert.Equal(t, FailureMalformed, res.Failure)
}

func TestValidate_Garbage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "not a jwt", token: "not-a-valid-jwt"},
		{name: "two segments", token: "abc.def"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := ValidateAccess(tt.token, testAccessSecret, time.Now())
			assert.Equal(t, FailureMalformed, res.Failure)
			assert.Error(t, res.Err)
		})
	}
}

func TestValidate_StrictSchema(t *testing.T) {
	t.Parallel()

	now := time.Now()
	exp := jwt.NewNumericDate(now.Add(time.Hour))

	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{name: "unknown field", claims: jwt.MapClaims{"sub": "u1", "role": "user", "exp": exp, "user_id": "u1"}},
		{name: "missing sub", claims: jwt.MapClaims{"role": "user", "exp": exp}},
		{name: "missing exp", claims: jwt.MapClaims{"sub": "u1", "role": "user"}},
		{name: "unknown role", claims: jwt.MapClaims{"sub": "u1", "role": "root", "exp": exp}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tt.claims).SignedString(testAccessSecret)
			require.NoError(t, err)

			res := ValidateAccess(token, testAccessSecret, now)
			assert.Equal(t, FailureMalformed, res.Failure)
		})
	}
}

func TestValidate_RefreshRejectsRoleClaim(t *testing.T) {
	t.Parallel()

	now := time.Now()
	claims := jwt.MapClaims{"sub": "u1", "role": "admin", "exp": jwt.NewNumericDate(now.Add(time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testRefreshSecret)
	require.NoError(t, err)

	assert.Equal(t, FailureMalformed, ValidateRefresh(token, testRefreshSecret, now).Failure)
}

func TestValidate_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	now := time.Now()
	claims := jwt.MapClaims{"sub": "u1", "role": "user", "exp": jwt.NewNumericDate(now.Add(time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testAccessSecret)
	require.NoError(t, err)

	assert.Equal(t, FailureMalformed, ValidateAccess(token, testAccessSecret, now).Failure)
}

func TestValidator_UsesClock(t *testing.T) {
	t.Parallel()

	now := time.Now()
	iss := NewIssuer(testAccessSecret, testRefreshSecret, time.Second, time.Second)
	iss.Now = func() time.Time { return now }
	access, _, err := iss.IssueAccess("u1", roles.User)
	require.NoError(t, err)
	refresh, _, err := iss.IssueRefresh("u1")
	require.NoError(t, err)

	v := NewValidator(testAccessSecret, testRefreshSecret)
	v.Now = func() time.Time { return now }
	assert.True(t, v.Access(access).OK())
	assert.True(t, v.Refresh(refresh).OK())

	v.Now = func() time.Time { return now.Add(2 * time.Second) }
	assert.Equal(t, FailureExpired, v.Access(access).Failure)
	assert.Equal(t, FailureExpired, v.Refresh(refresh).Failure)
}

func TestFailure_String(t *testing.T) {
	assert.Equal(t, "none", FailureNone.String())
	assert.Equal(t, "malformed", FailureMalformed.String())
	assert.Equal(t, "expired", FailureExpired.String())
}

func decodePayload(t *testing.T, token string) string {
	t.Helper()
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	return string(raw)
}
