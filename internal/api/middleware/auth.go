package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/users-service/internal/api/httperror"
	"github.com/99minutos/users-service/internal/api/metrics"
	"github.com/99minutos/users-service/internal/core/ports"
)

// UserKey is the echo context key holding the authenticated email.
const UserKey = "user"

// Auth validates the bearer token and injects the resolved email into context.
// Every rejection is the same 401; the reason is only logged.
func Auth(verifier ports.TokenVerifier, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
				log.Debug().Str("path", c.Path()).Msg("missing authorization header")
				return httperror.Unauthorized()
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				metrics.TokenVerificationsTotal.WithLabelValues("malformed").Inc()
				log.Debug().Str("path", c.Path()).Msg("malformed authorization header")
				return httperror.Unauthorized()
			}

			email, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				log.Info().Err(err).Str("path", c.Path()).Msg("token rejected")
				return httperror.Unauthorized()
			}

			metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()
			c.Set(UserKey, email)
			return next(c)
		}
	}
}

// User returns the email injected by Auth, or "" on unauthenticated routes.
func User(c echo.Context) string {
	email, _ := c.Get(UserKey).(string)
	return email
}
