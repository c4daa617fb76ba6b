package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/service"
	"github.com/njprem/TravelReel_BackEnd/internal/util"
)

type feedService interface {
	Assemble(ctx context.Context, req domain.FeedRequest) (*domain.FeedPage, error)
}

type searchService interface {
	Search(ctx context.Context, viewer *uuid.UUID, query string) (*domain.SearchResult, error)
}

type tagService interface {
	Popular(ctx context.Context, page domain.Page) (*domain.PageResult[domain.Tag], error)
}

var (
	_ feedService   = (*service.FeedService)(nil)
	_ searchService = (*service.SearchService)(nil)
	_ tagService    = (*service.TagService)(nil)
)

// DiscoveryHandler serves the read-only discovery surfaces: the feed, search
// and popular tags.
type DiscoveryHandler struct {
	feed   feedService
	search searchService
	tags   tagService
	now    func() time.Time
}

func RegisterDiscovery(e *echo.Echo, auth Authenticator, feed feedService, search searchService, tags tagService) {
	h := &DiscoveryHandler{feed: feed, search: search, tags: tags, now: time.Now}

	g := e.Group("/api/v1")
	g.GET("/feed", h.getFeed, OptionalAuth(auth))
	g.GET("/search", h.searchAll, OptionalAuth(auth))
	g.GET("/tags/popular", h.popularTags)
}

// getFeed godoc
// @Summary Video feed
// @Tags feed
// @Produce json
// @Param feed query string false "latest (default), trending, following, 3d"
// @Param page_size query int false "Posts per page (default 10, max 100)"
// @Param offset query int false "Offset into the feed"
// @Success 200 {object} FeedResponse
// @Router /api/v1/feed [get]
func (h *DiscoveryHandler) getFeed(c echo.Context) error {
	req := domain.FeedRequest{
		ViewerID: viewerID(c),
		Mode:     domain.ParseFeedMode(c.QueryParam("feed")),
	}
	if v := strings.TrimSpace(c.QueryParam("page_size")); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "page_size must be an integer")
		}
		req.PageSize = size
	}
	if v := strings.TrimSpace(c.QueryParam("offset")); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "offset must be an integer")
		}
		req.Offset = offset
	}

	page, err := h.feed.Assemble(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err, "unable to load feed")
	}
	return c.JSON(http.StatusOK, FeedResponse{
		Results: postResponses(page.Posts, h.now()),
		HasNext: page.HasNext,
		Feed:    string(page.Mode),
	})
}

// searchAll godoc
// @Summary Search users, destinations, posts and tags
// @Tags search
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {object} SearchResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/search [get]
func (h *DiscoveryHandler) searchAll(c echo.Context) error {
	result, err := h.search.Search(c.Request().Context(), viewerID(c), c.QueryParam("q"))
	if err != nil {
		return writeError(c, err, "unable to search")
	}
	users := make([]ProfileResponse, 0, len(result.Users))
	for i := range result.Users {
		users = append(users, profileResponse(&result.Users[i]))
	}
	return c.JSON(http.StatusOK, SearchResponse{
		Users:        users,
		Destinations: destinationResponses(result.Destinations),
		Posts:        postResponses(result.Posts, h.now()),
		Tags:         tagResponses(result.Tags),
	})
}

func (h *DiscoveryHandler) popularTags(c echo.Context) error {
	result, err := h.tags.Popular(c.Request().Context(), parsePage(c))
	if err != nil {
		return writeError(c, err, "unable to list tags")
	}
	return c.JSON(http.StatusOK, util.Paginated(tagResponses(result.Items), result.Total, result.Page, result.PageSize))
}
