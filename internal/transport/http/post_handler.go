package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/service"
	"github.com/njprem/TravelReel_BackEnd/internal/util"
)

type postService interface {
	Create(ctx context.Context, userID uuid.UUID, input service.PostCreateInput) (*domain.Post, error)
	Get(ctx context.Context, id uuid.UUID, viewer *uuid.UUID, view service.ViewContext) (*domain.Post, error)
	Update(ctx context.Context, id, userID uuid.UUID, update domain.PostUpdate) (*domain.Post, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	List(ctx context.Context, viewer *uuid.UUID, filter domain.PostListFilter) (*domain.PageResult[domain.Post], error)
}

type engagementService interface {
	ToggleLike(ctx context.Context, userID, postID uuid.UUID) (*domain.ToggleResult, error)
	Share(ctx context.Context, userID, postID uuid.UUID, platform domain.SharePlatform) (*service.ShareResult, error)
	AddComment(ctx context.Context, userID, postID uuid.UUID, content string, parentID *uuid.UUID) (*domain.Comment, error)
	ListComments(ctx context.Context, postID uuid.UUID, page domain.Page) (*domain.PageResult[domain.Comment], error)
}

var (
	_ postService       = (*service.PostService)(nil)
	_ engagementService = (*service.EngagementService)(nil)
)

type PostHandler struct {
	posts      postService
	engagement engagementService
	now        func() time.Time
}

func RegisterPosts(e *echo.Echo, auth Authenticator, posts postService, engagement engagementService) {
	h := &PostHandler{posts: posts, engagement: engagement, now: time.Now}

	g := e.Group("/api/v1/posts")
	g.GET("", h.list, OptionalAuth(auth))
	g.POST("", h.create, RequireAuth(auth))
	g.GET("/:id", h.get, OptionalAuth(auth))
	g.PUT("/:id", h.update, RequireAuth(auth))
	g.DELETE("/:id", h.delete, RequireAuth(auth))
	g.POST("/:id/like", h.like, RequireAuth(auth))
	g.POST("/:id/share", h.share, RequireAuth(auth))
	g.GET("/:id/comments", h.listComments, OptionalAuth(auth))
	g.POST("/:id/comments", h.addComment, RequireAuth(auth))
}

// list godoc
// @Summary List public posts
// @Tags posts
// @Produce json
// @Param search query string false "Description or author username"
// @Param featured_3d query bool false "Only 3D featured posts"
// @Param country query string false "Destination country"
// @Param user query string false "Author username"
// @Param destination query string false "Destination ID"
// @Param tags query string false "Comma separated tag names"
// @Param ordering query string false "created_at, likes_count, views_count; prefix - for descending"
// @Param feed query string false "latest, trending, following, 3d"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/posts [get]
func (h *PostHandler) list(c echo.Context) error {
	filter, err := parsePostListFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	result, err := h.posts.List(c.Request().Context(), viewerID(c), filter)
	if err != nil {
		return writeError(c, err, "unable to list posts")
	}
	return c.JSON(http.StatusOK, util.Paginated(postResponses(result.Items, h.now()), result.Total, result.Page, result.PageSize))
}

// create godoc
// @Summary Upload a travel video
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param video formData file true "Video file"
// @Param thumbnail formData file false "Thumbnail image"
// @Param destination_id formData string true "Destination ID"
// @Param description formData string false "Description"
// @Param tags_input formData string false "Hashtags, e.g. #bali #beach"
// @Success 201 {object} PostResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/posts [post]
func (h *PostHandler) create(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	if !isMultipart(c) {
		return badRequest(c, "multipart form data required")
	}

	form, err := c.FormParams()
	if err != nil {
		return badRequest(c, "invalid form data")
	}
	input, err := parsePostCreateForm(form)
	if err != nil {
		return badRequest(c, err.Error())
	}

	video, videoFile, err := formUpload(c, "video")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if video == nil {
		return badRequest(c, "video is required")
	}
	defer videoFile.Close()
	input.Video = service.VideoUpload{
		Reader:      video.Reader,
		Size:        video.Size,
		FileName:    video.FileName,
		ContentType: video.ContentType,
	}

	thumbnail, thumbFile, err := formUpload(c, "thumbnail")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if thumbFile != nil {
		defer thumbFile.Close()
	}
	input.Thumbnail = thumbnail

	post, err := h.posts.Create(c.Request().Context(), user.ID, input)
	if err != nil {
		return writeError(c, err, "unable to create post")
	}
	return c.JSON(http.StatusCreated, postResponse(post, h.now()))
}

// get godoc
// @Summary Post detail
// @Description Records one view of the post.
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} PostResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/posts/{id} [get]
func (h *PostHandler) get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	view := service.ViewContext{
		IPAddress: clientIP(c.Request()),
		UserAgent: c.Request().UserAgent(),
	}
	if raw := strings.TrimSpace(c.QueryParam("watched_seconds")); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds >= 0 {
			view.DurationSeconds = &seconds
		}
	}
	post, err := h.posts.Get(c.Request().Context(), id, viewerID(c), view)
	if err != nil {
		return writeError(c, err, "unable to load post")
	}
	return c.JSON(http.StatusOK, postResponse(post, h.now()))
}

func (h *PostHandler) update(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req PostUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}
	post, err := h.posts.Update(c.Request().Context(), id, user.ID, domain.PostUpdate{
		Description: req.Description,
		MusicName:   req.MusicName,
		MusicArtist: req.MusicArtist,
		Featured3D:  req.Featured3D,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		return writeError(c, err, "unable to update post")
	}
	return c.JSON(http.StatusOK, postResponse(post, h.now()))
}

func (h *PostHandler) delete(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.posts.Delete(c.Request().Context(), id, user.ID); err != nil {
		return writeError(c, err, "unable to delete post")
	}
	return c.NoContent(http.StatusNoContent)
}

// like godoc
// @Summary Like or unlike a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} LikeResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/posts/{id}/like [post]
func (h *PostHandler) like(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	res, err := h.engagement.ToggleLike(c.Request().Context(), user.ID, id)
	if err != nil {
		return writeError(c, err, "unable to update like")
	}
	return c.JSON(http.StatusOK, LikeResponse{
		Liked:      res.Present,
		LikesCount: res.Count(domain.CounterPostLikes),
	})
}

func (h *PostHandler) share(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req ShareRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}
	res, err := h.engagement.Share(c.Request().Context(), user.ID, id, domain.SharePlatform(strings.ToLower(strings.TrimSpace(req.Platform))))
	if err != nil {
		return writeError(c, err, "unable to share post")
	}
	return c.JSON(http.StatusOK, ShareResponse{
		Shared:      true,
		Platform:    res.Share.Platform,
		SharesCount: domain.Floor(res.SharesCount),
	})
}

func (h *PostHandler) listComments(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	result, err := h.engagement.ListComments(c.Request().Context(), id, parsePage(c))
	if err != nil {
		return writeError(c, err, "unable to list comments")
	}
	return c.JSON(http.StatusOK, util.Paginated(commentResponses(result.Items), result.Total, result.Page, result.PageSize))
}

// addComment godoc
// @Summary Comment on a post or reply to a comment
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param payload body CommentRequest true "Comment"
// @Success 201 {object} CommentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/posts/{id}/comments [post]
func (h *PostHandler) addComment(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req CommentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}
	comment, err := h.engagement.AddComment(c.Request().Context(), user.ID, id, req.Content, req.Parent)
	if err != nil {
		return writeError(c, err, "unable to add comment")
	}
	return c.JSON(http.StatusCreated, commentResponse(comment))
}

func parsePostListFilter(c echo.Context) (domain.PostListFilter, error) {
	filter := domain.PostListFilter{
		AuthorUsername: strings.TrimSpace(c.QueryParam("user")),
		Country:        strings.TrimSpace(c.QueryParam("country")),
		Search:         strings.TrimSpace(c.QueryParam("search")),
		Page:           parsePage(c),
	}
	if raw := strings.TrimSpace(c.QueryParam("feed")); raw != "" {
		filter.Mode = domain.ParseFeedMode(raw)
	}
	if raw := c.QueryParam("tags"); raw != "" {
		filter.Tags = domain.ParseTagList(raw)
	}
	if raw := strings.TrimSpace(c.QueryParam("destination")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return domain.PostListFilter{}, errors.New("destination must be a valid UUID")
		}
		filter.DestinationID = &id
	}

	featured, err := parseBool(c.QueryParam("featured_3d"))
	if err != nil {
		return domain.PostListFilter{}, fmt.Errorf("featured_3d: %w", err)
	}
	filter.Featured3D = featured

	sort, ok := domain.ParsePostSort(c.QueryParam("ordering"))
	if !ok {
		return domain.PostListFilter{}, fmt.Errorf("invalid ordering %q", c.QueryParam("ordering"))
	}
	if strings.TrimSpace(c.QueryParam("ordering")) != "" {
		filter.Sort = sort
	}
	return filter, nil
}

func parsePostCreateForm(form url.Values) (service.PostCreateInput, error) {
	var input service.PostCreateInput

	rawDest := formValue(form, "destination_id")
	if rawDest == nil || strings.TrimSpace(*rawDest) == "" {
		return input, errors.New("destination_id is required")
	}
	destID, err := uuid.Parse(strings.TrimSpace(*rawDest))
	if err != nil {
		return input, errors.New("destination_id must be a valid UUID")
	}
	input.DestinationID = destID

	if v := formValue(form, "description"); v != nil {
		input.Description = *v
	}
	if v := formValue(form, "music_name"); v != nil {
		input.MusicName = strings.TrimSpace(*v)
	}
	if v := formValue(form, "music_artist"); v != nil {
		input.MusicArtist = strings.TrimSpace(*v)
	}
	if v := formValue(form, "tags_input"); v != nil {
		input.TagsInput = *v
	}

	featured, err := formBool(form, "featured_3d")
	if err != nil {
		return input, err
	}
	if featured != nil {
		input.Featured3D = *featured
	}
	input.IsPublic, err = formBool(form, "is_public")
	if err != nil {
		return input, err
	}

	if v := formValue(form, "duration_seconds"); v != nil && strings.TrimSpace(*v) != "" {
		seconds, err := strconv.Atoi(strings.TrimSpace(*v))
		if err != nil {
			return input, errors.New("duration_seconds must be an integer")
		}
		input.DurationSeconds = &seconds
	}
	return input, nil
}
