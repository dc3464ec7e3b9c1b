package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/users-service/internal/api/httperror"
	"github.com/99minutos/users-service/internal/api/metrics"
	"github.com/99minutos/users-service/internal/api/middleware"
	"github.com/99minutos/users-service/internal/api/routing"
	"github.com/99minutos/users-service/internal/core/domain"
	"github.com/99minutos/users-service/internal/core/ports"
)

// UserController serves the account endpoints mounted under /users.
type UserController struct {
	service ports.UserService
	log     zerolog.Logger
	routes  []routing.Definition
}

func NewUserController(service ports.UserService, verifier ports.TokenVerifier, v echo.Validator, log zerolog.Logger) *UserController {
	h := &UserController{service: service, log: log}
	h.routes = []routing.Definition{
		{
			Path:        "/login",
			Method:      http.MethodPost,
			Func:        h.Login,
			Middlewares: []echo.MiddlewareFunc{middleware.Validate[loginRequest](v)},
		},
		{
			Path:        "/register",
			Method:      http.MethodPost,
			Func:        h.Register,
			Middlewares: []echo.MiddlewareFunc{middleware.Validate[registerRequest](v)},
		},
		{
			Path:        "/info",
			Method:      http.MethodGet,
			Func:        h.Info,
			Middlewares: []echo.MiddlewareFunc{middleware.Auth(verifier, log)},
		},
	}
	return h
}

func (h *UserController) Routes() []routing.Definition {
	return h.routes
}

// Login authenticates a user and returns a JWT.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /users/login [post]
func (h *UserController) Login(c echo.Context) error {
	req, ok := middleware.Body[loginRequest](c)
	if !ok {
		return httperror.Internal(errors.New("login: request body not validated"))
	}

	token, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
			return httperror.Unauthorized()
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return httperror.Internal(err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{JWT: token})
}

// Register creates a new user account. It does not issue a token.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  domain.PublicUser
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /users/register [post]
func (h *UserController) Register(c echo.Context) error {
	req, ok := middleware.Body[registerRequest](c)
	if !ok {
		return httperror.Internal(errors.New("register: request body not validated"))
	}

	user, err := h.service.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
			return httperror.Conflict("already registered user")
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return httperror.Internal(err)
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, user.Public())
}

// Info returns the profile of the authenticated user.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  domain.PublicUser
// @Failure      401   {object}  errorResponse
// @Router       /users/info [get]
func (h *UserController) Info(c echo.Context) error {
	email := middleware.User(c)
	if email == "" {
		return httperror.Unauthorized()
	}

	user, err := h.service.Info(c.Request().Context(), email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			h.log.Info().Str("email", email).Msg("token subject no longer exists")
			return httperror.Unauthorized()
		}
		return httperror.Internal(err)
	}

	return c.JSON(http.StatusOK, user.Public())
}
