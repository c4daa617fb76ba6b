package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/service"
	"github.com/njprem/TravelReel_BackEnd/internal/util"
)

type destinationService interface {
	List(ctx context.Context, filter domain.DestinationListFilter) (*domain.PageResult[domain.Destination], error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Destination, error)
	Create(ctx context.Context, input service.DestinationCreateInput) (*domain.Destination, error)
}

type trendingService interface {
	List(ctx context.Context, page domain.Page) (*domain.PageResult[domain.TrendingDestination], error)
}

var (
	_ destinationService = (*service.DestinationService)(nil)
	_ trendingService    = (*service.TrendingService)(nil)
)

type DestinationHandler struct {
	destinations destinationService
	trending     trendingService
}

// DestinationRequest is accepted as JSON or as a multipart form with an
// optional "featured_image" file.
type DestinationRequest struct {
	Name        string  `json:"name" form:"name" validate:"required,max=200" example:"Bali"`
	Country     string  `json:"country" form:"country" validate:"required,max=100" example:"Indonesia"`
	City        string  `json:"city" form:"city" validate:"max=100" example:"Ubud"`
	Latitude    float64 `json:"latitude" form:"latitude" validate:"latitude" example:"-8.5069"`
	Longitude   float64 `json:"longitude" form:"longitude" validate:"longitude" example:"115.2625"`
	Description string  `json:"description" form:"description"`
	Has3DModel  bool    `json:"has_3d_model" form:"has_3d_model"`
	ModelType   string  `json:"model_type" form:"model_type" example:"island"`
}

func RegisterDestinations(e *echo.Echo, auth Authenticator, destinations destinationService, trending trendingService) {
	h := &DestinationHandler{destinations: destinations, trending: trending}

	g := e.Group("/api/v1/destinations")
	g.GET("", h.list)
	g.POST("", h.create, RequireAuth(auth))
	g.GET("/trending", h.listTrending)
	g.GET("/:id", h.get)
}

// list godoc
// @Summary List destinations
// @Tags destinations
// @Produce json
// @Param search query string false "Name, country or city"
// @Param country query string false "Country (case-insensitive substring)"
// @Param has_3d query bool false "Only destinations with a 3D model"
// @Param ordering query string false "name, posts_count, created_at; prefix - for descending"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/destinations [get]
func (h *DestinationHandler) list(c echo.Context) error {
	filter, err := parseDestinationListFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	result, err := h.destinations.List(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, err, "unable to list destinations")
	}
	return c.JSON(http.StatusOK, util.Paginated(destinationResponses(result.Items), result.Total, result.Page, result.PageSize))
}

func (h *DestinationHandler) create(c echo.Context) error {
	var req DestinationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	input := service.DestinationCreateInput{
		DestinationCreate: domain.DestinationCreate{
			Name:        req.Name,
			Country:     req.Country,
			City:        req.City,
			Latitude:    req.Latitude,
			Longitude:   req.Longitude,
			Description: req.Description,
			Has3DModel:  req.Has3DModel,
			ModelType:   domain.ModelType(strings.ToLower(strings.TrimSpace(req.ModelType))),
		},
	}
	if isMultipart(c) {
		image, file, err := formUpload(c, "featured_image")
		if err != nil {
			return badRequest(c, err.Error())
		}
		if file != nil {
			defer file.Close()
		}
		input.FeaturedImage = image
	}

	dest, err := h.destinations.Create(c.Request().Context(), input)
	if err != nil {
		return writeError(c, err, "unable to create destination")
	}
	return c.JSON(http.StatusCreated, destinationResponse(dest))
}

// get godoc
// @Summary Destination detail
// @Tags destinations
// @Produce json
// @Param id path string true "Destination ID"
// @Success 200 {object} DestinationResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/destinations/{id} [get]
func (h *DestinationHandler) get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	dest, err := h.destinations.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err, "unable to load destination")
	}
	return c.JSON(http.StatusOK, destinationResponse(dest))
}

// listTrending godoc
// @Summary Trending destinations
// @Tags destinations
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/destinations/trending [get]
func (h *DestinationHandler) listTrending(c echo.Context) error {
	result, err := h.trending.List(c.Request().Context(), parsePage(c))
	if err != nil {
		return writeError(c, err, "unable to list trending destinations")
	}
	rows := make([]TrendingResponse, 0, len(result.Items))
	for i := range result.Items {
		rows = append(rows, trendingResponse(&result.Items[i]))
	}
	return c.JSON(http.StatusOK, util.Paginated(rows, result.Total, result.Page, result.PageSize))
}

func parseDestinationListFilter(c echo.Context) (domain.DestinationListFilter, error) {
	filter := domain.DestinationListFilter{
		Search:  strings.TrimSpace(c.QueryParam("search")),
		Country: strings.TrimSpace(c.QueryParam("country")),
		Page:    parsePage(c),
	}

	only3D, err := parseBool(c.QueryParam("has_3d"))
	if err != nil {
		return domain.DestinationListFilter{}, fmt.Errorf("has_3d: %w", err)
	}
	filter.Only3D = only3D

	if raw := strings.TrimSpace(c.QueryParam("ordering")); raw != "" {
		sort := domain.DestinationSort(strings.ToLower(raw))
		if !sort.Valid() {
			return domain.DestinationListFilter{}, fmt.Errorf("invalid ordering %q", raw)
		}
		filter.Sort = sort
	}
	return filter, nil
}
