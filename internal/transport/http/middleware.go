package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/service"
	"github.com/njprem/TravelReel_BackEnd/internal/util"
)

const (
	contextUserKey  = "auth.user"
	contextTokenKey = "auth.token"
)

// Authenticator resolves a bearer token to its account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Account, error)
}

func RequireAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, msg := bearerToken(c.Request())
			if msg != "" {
				return c.JSON(http.StatusUnauthorized, util.Error(msg))
			}
			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
			}
			c.Set(contextUserKey, user)
			c.Set(contextTokenKey, token)
			return next(c)
		}
	}
}

// OptionalAuth attaches the account when a valid bearer token is present and
// serves the request anonymously otherwise. A malformed or stale token is
// treated the same as no token.
func OptionalAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, msg := bearerToken(c.Request())
			if msg != "" {
				return next(c)
			}
			if user, err := auth.Authenticate(c.Request().Context(), token); err == nil {
				c.Set(contextUserKey, user)
				c.Set(contextTokenKey, token)
			}
			return next(c)
		}
	}
}

func bearerToken(r *http.Request) (string, string) {
	authHeader := r.Header.Get(echo.HeaderAuthorization)
	if strings.TrimSpace(authHeader) == "" {
		return "", "missing authorization header"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", "invalid authorization header"
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", "invalid authorization header"
	}
	return token, ""
}

func CurrentUser(c echo.Context) (*domain.Account, bool) {
	user, ok := c.Get(contextUserKey).(*domain.Account)
	return user, ok && user != nil
}

func currentToken(c echo.Context) string {
	token, _ := c.Get(contextTokenKey).(string)
	return token
}

// viewerID is the optional actor passed to read operations.
func viewerID(c echo.Context) *uuid.UUID {
	user, ok := CurrentUser(c)
	if !ok {
		return nil
	}
	id := user.ID
	return &id
}

var _ Authenticator = (*service.AuthService)(nil)
