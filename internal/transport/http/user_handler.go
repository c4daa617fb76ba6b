package http

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/service"
)

type accountService interface {
	Profile(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	PublicProfile(ctx context.Context, username string, viewer *uuid.UUID) (*domain.PublicProfile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input service.ProfileUpdateInput) (*domain.Account, error)
}

type followService interface {
	ToggleFollow(ctx context.Context, followerID, followingID uuid.UUID) (*domain.ToggleResult, error)
}

type preferenceService interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.UserPreference, error)
	Update(ctx context.Context, userID uuid.UUID, update domain.PreferenceUpdate) (*domain.UserPreference, error)
}

var (
	_ accountService    = (*service.AccountService)(nil)
	_ followService     = (*service.EngagementService)(nil)
	_ preferenceService = (*service.PreferenceService)(nil)
)

type UserHandler struct {
	accounts accountService
	follows  followService
	prefs    preferenceService
}

// ProfileUpdateRequest is the JSON form of a profile update; multipart
// requests use the same field names plus an "avatar" file.
type ProfileUpdateRequest struct {
	Email           *string `json:"email" validate:"omitempty,email"`
	FirstName       *string `json:"first_name" validate:"omitempty,max=150"`
	LastName        *string `json:"last_name" validate:"omitempty,max=150"`
	Bio             *string `json:"bio" validate:"omitempty,max=500"`
	CurrentPassword *string `json:"current_password"`
	NewPassword     *string `json:"new_password"`
}

func RegisterUsers(e *echo.Echo, auth Authenticator, accounts accountService, follows followService, prefs preferenceService) {
	h := &UserHandler{accounts: accounts, follows: follows, prefs: prefs}

	g := e.Group("/api/v1/users")
	g.GET("/profile", h.profile, RequireAuth(auth))
	g.PUT("/profile", h.updateProfile, RequireAuth(auth))
	g.GET("/preferences", h.preferences, RequireAuth(auth))
	g.PUT("/preferences", h.updatePreferences, RequireAuth(auth))
	g.GET("/:username", h.publicProfile, OptionalAuth(auth))
	g.POST("/:id/follow", h.follow, RequireAuth(auth))
}

// profile godoc
// @Summary Current account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/users/profile [get]
func (h *UserHandler) profile(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	account, err := h.accounts.Profile(c.Request().Context(), user.ID)
	if err != nil {
		return writeError(c, err, "unable to load profile")
	}
	return c.JSON(http.StatusOK, userResponse(account))
}

func (h *UserHandler) updateProfile(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var (
		req    ProfileUpdateRequest
		input  service.ProfileUpdateInput
		closer io.Closer
	)
	if isMultipart(c) {
		form, err := c.FormParams()
		if err != nil {
			return badRequest(c, "invalid form data")
		}
		req = ProfileUpdateRequest{
			Email:           formValue(form, "email"),
			FirstName:       formValue(form, "first_name"),
			LastName:        formValue(form, "last_name"),
			Bio:             formValue(form, "bio"),
			CurrentPassword: formValue(form, "current_password"),
			NewPassword:     formValue(form, "new_password"),
		}
		avatar, file, err := formUpload(c, "avatar")
		if err != nil {
			return badRequest(c, err.Error())
		}
		input.Avatar = avatar
		closer = file
	} else if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if closer != nil {
		defer closer.Close()
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}
	if req.NewPassword != nil && *req.NewPassword == "" {
		req.NewPassword = nil
	}

	input.Email = req.Email
	input.FirstName = req.FirstName
	input.LastName = req.LastName
	input.Bio = req.Bio
	input.CurrentPassword = req.CurrentPassword
	input.NewPassword = req.NewPassword

	account, err := h.accounts.UpdateProfile(c.Request().Context(), user.ID, input)
	if err != nil {
		return writeError(c, err, "unable to update profile")
	}
	return c.JSON(http.StatusOK, userResponse(account))
}

// publicProfile godoc
// @Summary Public profile by username
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} ProfileResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/users/{username} [get]
func (h *UserHandler) publicProfile(c echo.Context) error {
	profile, err := h.accounts.PublicProfile(c.Request().Context(), c.Param("username"), viewerID(c))
	if err != nil {
		return writeError(c, err, "unable to load profile")
	}
	return c.JSON(http.StatusOK, profileResponse(profile))
}

// follow godoc
// @Summary Follow or unfollow an account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 200 {object} FollowResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/users/{id}/follow [post]
func (h *UserHandler) follow(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	target, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	res, err := h.follows.ToggleFollow(c.Request().Context(), user.ID, target)
	if err != nil {
		return writeError(c, err, "unable to update follow")
	}
	return c.JSON(http.StatusOK, FollowResponse{
		Following:      res.Present,
		FollowersCount: res.Count(domain.CounterAccountFollowers),
	})
}

func (h *UserHandler) preferences(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	pref, err := h.prefs.Get(c.Request().Context(), user.ID)
	if err != nil {
		return writeError(c, err, "unable to load preferences")
	}
	return c.JSON(http.StatusOK, preferenceResponse(pref))
}

func (h *UserHandler) updatePreferences(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	var req PreferenceRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	pref, err := h.prefs.Update(c.Request().Context(), user.ID, domain.PreferenceUpdate{
		Show3DContent:         req.Show3DContent,
		AutoPlayVideos:        req.AutoPlayVideos,
		ShowTrending:          req.ShowTrending,
		PreferredDestinations: req.PreferredDestinations,
		FavoriteTags:          req.FavoriteTags,
	})
	if err != nil {
		return writeError(c, err, "unable to update preferences")
	}
	return c.JSON(http.StatusOK, preferenceResponse(pref))
}
