package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// SecretTokenHeader is echoed by the chat transport with every webhook
// delivery.
const SecretTokenHeader = "X-Bot-Api-Secret-Token"

// WebhookSecret rejects webhook deliveries that do not carry the configured
// shared secret. The comparison is constant-time.
func WebhookSecret(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.Request().Header.Get(SecretTokenHeader)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing secret token")
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid secret token")
			}
			return next(c)
		}
	}
}
