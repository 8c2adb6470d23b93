// Package middleware provides HTTP middleware for the upload API.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-uploadable/internal/logger"
)

// CodeUnauthorized is returned when the API key is missing or wrong
const CodeUnauthorized = "UNAUTHORIZED"

// APIKeyAuth validates the bearer token of the Authorization header
// against apiKey in constant time. An empty apiKey disables the check.
func APIKeyAuth(apiKey string, sec *logger.SecurityLogger) echo.MiddlewareFunc {
	if l := sec.Logger(); apiKey == "" && l != nil {
		l.Warn("API_KEY not set - API is UNSECURED")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if apiKey == "" {
				return next(c)
			}

			path := c.Path()
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				sec.AuthFailure(c.RealIP(), path, "missing_header")
				return unauthorized("missing authorization header")
			}

			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
				sec.AuthFailure(c.RealIP(), path, "invalid_key")
				return unauthorized("invalid API key")
			}

			return next(c)
		}
	}
}

func unauthorized(message string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, map[string]string{
		"error": message,
		"code":  CodeUnauthorized,
	})
}
