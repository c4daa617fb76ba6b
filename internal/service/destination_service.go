package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/media"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
)

type DestinationService struct {
	destinations ports.DestinationRepository
	images       imageUploader
	limits       PageLimits
}

type DestinationServiceConfig struct {
	ImageBucket   string
	ImageMaxBytes int64
	Thumbnailer   media.Thumbnailer
	Limits        PageLimits
}

type DestinationCreateInput struct {
	domain.DestinationCreate
	FeaturedImage *media.Upload
}

func NewDestinationService(destRepo ports.DestinationRepository, storage ports.ObjectStorage, cfg DestinationServiceConfig) *DestinationService {
	return &DestinationService{
		destinations: destRepo,
		images: imageUploader{
			storage:     storage,
			thumbnailer: cfg.Thumbnailer,
			bucket:      cfg.ImageBucket,
			maxBytes:    cfg.ImageMaxBytes,
		},
		limits: cfg.Limits,
	}
}

func (s *DestinationService) List(ctx context.Context, filter domain.DestinationListFilter) (*domain.PageResult[domain.Destination], error) {
	filter.Page = s.limits.normalize(filter.Page)
	if filter.Sort == "" {
		filter.Sort = domain.DestinationSortPostsDesc
	}
	if !filter.Sort.Valid() {
		return nil, fmt.Errorf("%w: unknown ordering %q", ErrValidation, filter.Sort)
	}

	items, total, err := s.destinations.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].PostsCount = domain.Floor(items[i].PostsCount)
		items[i].VisitsCount = domain.Floor(items[i].VisitsCount)
	}
	return &domain.PageResult[domain.Destination]{
		Items:    items,
		Total:    total,
		Page:     filter.Page.Number,
		PageSize: filter.Page.Size,
	}, nil
}

func (s *DestinationService) Get(ctx context.Context, id uuid.UUID) (*domain.Destination, error) {
	dest, err := s.destinations.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDestinationNotFound
		}
		return nil, err
	}
	return dest, nil
}

func (s *DestinationService) Create(ctx context.Context, input DestinationCreateInput) (*domain.Destination, error) {
	create := input.DestinationCreate
	create.Name = strings.TrimSpace(create.Name)
	create.Country = strings.TrimSpace(create.Country)
	create.City = strings.TrimSpace(create.City)
	if create.Name == "" || create.Country == "" {
		return nil, fmt.Errorf("%w: name and country are required", ErrValidation)
	}
	if create.Latitude < -90 || create.Latitude > 90 {
		return nil, fmt.Errorf("%w: latitude must be between -90 and 90", ErrValidation)
	}
	if create.Longitude < -180 || create.Longitude > 180 {
		return nil, fmt.Errorf("%w: longitude must be between -180 and 180", ErrValidation)
	}
	if create.ModelType == "" {
		create.ModelType = domain.ModelTypeIsland
	}
	if !create.ModelType.Valid() {
		return nil, fmt.Errorf("%w: unknown model type %q", ErrValidation, create.ModelType)
	}

	var image *storedObject
	if input.FeaturedImage != nil {
		var err error
		image, err = s.images.upload(ctx, "destinations", *input.FeaturedImage)
		if err != nil {
			return nil, err
		}
		create.FeaturedImageURL = &image.url
	}

	dest, err := s.destinations.Create(ctx, create)
	if err != nil {
		removeObjects(ctx, s.images.storage, image)
		if isUniqueViolation(err) {
			return nil, ErrDestinationExists
		}
		return nil, err
	}
	return dest, nil
}
