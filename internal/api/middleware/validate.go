package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/users-service/internal/api/httperror"
	"github.com/99minutos/users-service/internal/api/validator"
)

// BodyKey is the echo context key holding the validated request DTO.
const BodyKey = "body"

// Normalizer is implemented by DTOs that trim or canonicalise declared fields
// before validation.
type Normalizer interface {
	Normalize()
}

// Validate binds the request body into a fresh T, validates it and stores the
// result under BodyKey. The handler is never reached with an invalid body.
func Validate[T any](v echo.Validator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			dto := new(T)
			if err := c.Bind(dto); err != nil {
				return httperror.Validation([]httperror.FieldError{
					{Field: "body", Message: "invalid payload"},
				})
			}
			if n, ok := any(dto).(Normalizer); ok {
				n.Normalize()
			}

			if err := v.Validate(dto); err != nil {
				var fe validator.FieldErrors
				if errors.As(err, &fe) {
					return httperror.Validation(fe)
				}
				return httperror.Internal(err)
			}

			c.Set(BodyKey, dto)
			return next(c)
		}
	}
}

// Body returns the DTO stored by Validate[T].
func Body[T any](c echo.Context) (*T, bool) {
	dto, ok := c.Get(BodyKey).(*T)
	return dto, ok
}
