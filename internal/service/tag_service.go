package service

import (
	"context"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
)

type TagService struct {
	tags   ports.TagRepository
	limits PageLimits
}

func NewTagService(tags ports.TagRepository, limits PageLimits) *TagService {
	return &TagService{tags: tags, limits: limits}
}

// Popular lists tags in use, most used first.
func (s *TagService) Popular(ctx context.Context, page domain.Page) (*domain.PageResult[domain.Tag], error) {
	page = s.limits.normalize(page)
	tags, err := s.tags.Popular(ctx, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	total, err := s.tags.CountPopular(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.PageResult[domain.Tag]{
		Items:    tags,
		Total:    total,
		Page:     page.Number,
		PageSize: page.Size,
	}, nil
}
