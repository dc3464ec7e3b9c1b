package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/users-service/internal/api/httperror"
	"github.com/99minutos/users-service/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error  string                 `json:"error"`
	Fields []httperror.FieldError `json:"fields,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders *httperror.Error values with their own status and message.
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		// The request logger hands errors over first; echo forwards the same
		// error again once the response is written.
		if c.Response().Committed {
			log.Debug().Err(err).Str("path", c.Path()).Msg("error after response was committed")
			return
		}

		code, body := resolveError(err, log, c)

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	code, body, unhandled := classifyError(err)
	if unhandled {
		logUnhandled(log, c, err)
	}
	return code, body
}

// classifyError maps err to the status and envelope the client receives.
// unhandled reports whether the error deserves a server-side log entry.
func classifyError(err error) (code int, body errorResponse, unhandled bool) {
	var ae *httperror.Error
	if errors.As(err, &ae) {
		return ae.Status, errorResponse{Error: ae.Message, Fields: ae.Fields}, ae.Status >= http.StatusInternalServerError
	}

	// Echo's own errors (404 from router, 405, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			return http.StatusInternalServerError, errorResponse{Error: "internal server error"}, true
		}
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}, false
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusUnauthorized, errorResponse{Error: "authorization error"}, false
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusUnprocessableEntity, errorResponse{Error: "already registered user"}, false
	}

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}, true
}

// responseStatus is the status the error handler will write for err. Metrics
// middleware runs before the handler commits, so it cannot read the response.
func responseStatus(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	code, _, _ := classifyError(err)
	return code
}

func logUnhandled(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")
}
