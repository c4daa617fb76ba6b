package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/metrics"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
)

const defaultSearchLimit = 10

type SearchService struct {
	repo  ports.SearchRepository
	posts ports.PostRepository
	limit int
}

func NewSearchService(repo ports.SearchRepository, posts ports.PostRepository, limit int) *SearchService {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return &SearchService{repo: repo, posts: posts, limit: limit}
}

// Search runs the four category lookups concurrently; any failure fails the
// whole search.
func (s *SearchService) Search(ctx context.Context, viewer *uuid.UUID, query string) (*domain.SearchResult, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, ErrSearchQueryRequired
	}
	tagQuery := domain.StripTagMarkers(q)

	start := time.Now()
	defer metrics.ObserveSince(metrics.SearchDuration, start)

	result := &domain.SearchResult{
		Users:        []domain.PublicProfile{},
		Destinations: []domain.Destination{},
		Posts:        []domain.Post{},
		Tags:         []domain.Tag{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := s.repo.Users(gctx, q, s.limit)
		if err == nil {
			result.Users = users
		}
		return err
	})
	g.Go(func() error {
		destinations, err := s.repo.Destinations(gctx, q, s.limit)
		if err == nil {
			result.Destinations = destinations
		}
		return err
	})
	g.Go(func() error {
		posts, err := s.repo.Posts(gctx, q, s.limit)
		if err != nil {
			return err
		}
		if err := decoratePosts(gctx, s.posts, posts, viewer); err != nil {
			return err
		}
		result.Posts = posts
		return nil
	})
	g.Go(func() error {
		if tagQuery == "" {
			return nil
		}
		tags, err := s.repo.Tags(gctx, tagQuery, s.limit)
		if err == nil {
			result.Tags = tags
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	clip(&result.Users, s.limit)
	clip(&result.Destinations, s.limit)
	clip(&result.Posts, s.limit)
	clip(&result.Tags, s.limit)
	return result, nil
}

func clip[T any](items *[]T, limit int) {
	if *items == nil {
		*items = []T{}
	}
	if len(*items) > limit {
		*items = (*items)[:limit]
	}
}
