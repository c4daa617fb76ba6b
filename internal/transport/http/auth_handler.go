package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/njprem/TravelReel_BackEnd/internal/service"
	"github.com/njprem/TravelReel_BackEnd/internal/util"
)

type authService interface {
	Authenticator
	Register(ctx context.Context, input service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, username, password string) (*service.AuthResult, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*service.AuthResult, error)
	Logout(ctx context.Context, token string) error
}

var _ authService = (*service.AuthService)(nil)

type AuthHandler struct {
	auth authService
}

func RegisterAuth(e *echo.Echo, auth authService) {
	h := &AuthHandler{auth: auth}

	g := e.Group("/api/v1/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.POST("/google", h.google)
	g.POST("/logout", h.logout, RequireAuth(auth))
}

// register godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body RegisterRequest true "Registration payload"
// @Success 201 {object} AuthTokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}
	res, err := h.auth.Register(c.Request().Context(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	})
	if err != nil {
		return writeError(c, err, "unable to register")
	}
	return c.JSON(http.StatusCreated, tokenResponse(res))
}

// login godoc
// @Summary Log in with username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body LoginRequest true "Credentials"
// @Success 200 {object} AuthTokenResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}
	res, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return writeError(c, err, "unable to log in")
	}
	return c.JSON(http.StatusOK, tokenResponse(res))
}

func (h *AuthHandler) google(c echo.Context) error {
	var req GoogleLoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}
	res, err := h.auth.LoginWithGoogle(c.Request().Context(), req.IDToken)
	if err != nil {
		return writeError(c, err, "unable to log in")
	}
	return c.JSON(http.StatusOK, tokenResponse(res))
}

func (h *AuthHandler) logout(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context(), currentToken(c)); err != nil {
		return writeError(c, err, "unable to log out")
	}
	return c.JSON(http.StatusOK, util.Data("success", true))
}

func tokenResponse(res *service.AuthResult) AuthTokenResponse {
	var user UserResponse
	if res.Account != nil {
		user = userResponse(res.Account)
	}
	return AuthTokenResponse{Token: res.Token, ExpiresAt: res.ExpiresAt, User: user}
}
