package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/welldanyogia/webrana-uploadable/internal/logger"
)

func newAuthContext(authHeader string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/documents")
	return c, rec
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "success")
}

func TestAPIKeyAuth(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		header     string
		wantStatus int
	}{
		{"valid bearer token", "test-api-key", "Bearer test-api-key", http.StatusOK},
		{"valid bare token", "test-api-key", "test-api-key", http.StatusOK},
		{"missing header", "test-api-key", "", http.StatusUnauthorized},
		{"wrong key", "test-api-key", "Bearer wrong-key", http.StatusUnauthorized},
		{"prefix of key", "test-api-key", "Bearer test-api", http.StatusUnauthorized},
		{"auth disabled", "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newAuthContext(tt.header)

			err := APIKeyAuth(tt.apiKey, nil)(okHandler)(c)

			if tt.wantStatus == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, rec.Code)
				return
			}
			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.wantStatus, httpErr.Code)
			assert.Equal(t, CodeUnauthorized, httpErr.Message.(map[string]string)["code"])
		})
	}
}

func TestAPIKeyAuth_LogsFailures(t *testing.T) {
	var buf bytes.Buffer
	sec := logger.NewSecurityLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	c, _ := newAuthContext("Bearer wrong-key")
	err := APIKeyAuth("test-api-key", sec)(okHandler)(c)

	assert.Error(t, err)
	assert.Contains(t, buf.String(), `"event_type":"auth_failure"`)
	assert.Contains(t, buf.String(), `"reason":"invalid_key"`)
	assert.NotContains(t, buf.String(), "wrong-key")
}

func TestAPIKeyAuth_WarnsWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	APIKeyAuth("", logger.NewSecurityLogger(slog.New(slog.NewJSONHandler(&buf, nil))))

	assert.Contains(t, buf.String(), "UNSECURED")
}
