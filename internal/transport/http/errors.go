package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/njprem/TravelReel_BackEnd/internal/service"
	"github.com/njprem/TravelReel_BackEnd/internal/util"
)

// writeError maps service errors onto status codes. Anything unrecognised is
// logged and reported as a 500 with the given fallback message.
func writeError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrSelfFollow),
		errors.Is(err, service.ErrSearchQueryRequired):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidGoogleToken),
		errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, util.Error(err.Error()))
	case errors.Is(err, service.ErrAccountNotFound),
		errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrDestinationNotFound):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrDestinationExists),
		errors.Is(err, service.ErrToggleConflict):
		return c.JSON(http.StatusConflict, util.Error(err.Error()))
	default:
		slog.ErrorContext(c.Request().Context(), fallback,
			slog.String("method", c.Request().Method),
			slog.String("path", c.Path()),
			slog.Any("error", err),
		)
		return c.JSON(http.StatusInternalServerError, util.Error(fallback))
	}
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, util.Error(message))
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
}
