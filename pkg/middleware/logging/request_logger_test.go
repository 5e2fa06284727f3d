package loggingmw

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/maumeum/pkg/logging"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &m))
	return m
}

func TestRequestLogger_LogsCompletion(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(logging.NewWithWriter(&buf, "info")))
	e.GET("/api/volunteers/:id", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("inside_handler")
		c.Set("userID", "u1")
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/volunteers/42", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "rid-1", rec.Header().Get(echo.HeaderXRequestID))
	assert.Contains(t, buf.String(), `"msg":"inside_handler"`)

	m := lastLine(t, &buf)
	assert.Equal(t, "INFO", m["level"])
	assert.Equal(t, "/api/volunteers/:id", m["path"])
	assert.Equal(t, "rid-1", m["request_id"])
	assert.Equal(t, "u1", m["user_id"])
	assert.EqualValues(t, 200, m["status"])
}

func TestRequestLogger_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		level  string
	}{
		{name: "not found", err: echo.NewHTTPError(http.StatusNotFound, "nope"), status: 404, level: "WARN"},
		{name: "wrong password", err: echo.NewHTTPError(http.StatusUnauthorized, "authentication failed"), status: 401, level: "WARN"},
		{name: "conflict", err: echo.NewHTTPError(http.StatusConflict, "resource already exists"), status: 409, level: "WARN"},
		{name: "http 500", err: echo.NewHTTPError(http.StatusInternalServerError, "internal server error"), status: 500, level: "ERROR"},
		{name: "plain error", err: errors.New("db gone"), status: 500, level: "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			e := echo.New()
			e.Use(RequestLogger(logging.NewWithWriter(&buf, "info")))
			e.GET("/fails", func(c echo.Context) error { return tt.err })

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fails", nil))

			assert.Equal(t, tt.status, rec.Code)
			m := lastLine(t, &buf)
			assert.Equal(t, tt.level, m["level"])
			assert.EqualValues(t, tt.status, m["status"])
			assert.NotEmpty(t, m["error"])
		})
	}
}
