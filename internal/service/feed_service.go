package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/metrics"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
)

const defaultFeedPageSize = 10

type FeedService struct {
	posts  ports.PostRepository
	prefs  ports.PreferenceRepository
	limits PageLimits
	now    func() time.Time
}

func NewFeedService(posts ports.PostRepository, prefs ports.PreferenceRepository, limits PageLimits) *FeedService {
	return &FeedService{posts: posts, prefs: prefs, limits: limits, now: time.Now}
}

// Assemble selects one offset page of public posts for the requested mode.
func (s *FeedService) Assemble(ctx context.Context, req domain.FeedRequest) (*domain.FeedPage, error) {
	size := req.PageSize
	if size <= 0 {
		size = s.limits.Default
	}
	if size <= 0 {
		size = defaultFeedPageSize
	}
	if s.limits.Max > 0 && size > s.limits.Max {
		size = s.limits.Max
	}
	offset := max(req.Offset, 0)

	query, mode, err := s.modeQuery(ctx, req.Mode, req.ViewerID)
	if err != nil {
		return nil, err
	}
	query.Limit = size
	query.Offset = offset

	posts, err := s.posts.List(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := decoratePosts(ctx, s.posts, posts, req.ViewerID); err != nil {
		return nil, err
	}
	metrics.FeedRequests.WithLabelValues(string(mode)).Inc()

	return &domain.FeedPage{
		Mode:     mode,
		Posts:    posts,
		HasNext:  len(posts) == size,
		Offset:   offset,
		PageSize: size,
	}, nil
}

// modeQuery translates a feed mode and viewer into selection and ordering.
// Anonymous viewers asking for "following" get the latest feed.
func (s *FeedService) modeQuery(ctx context.Context, mode domain.FeedMode, viewer *uuid.UUID) (domain.PostQuery, domain.FeedMode, error) {
	mode = domain.ParseFeedMode(string(mode))
	if mode == domain.FeedFollowing && viewer == nil {
		mode = domain.FeedLatest
	}

	query := domain.PostQuery{Sort: domain.PostSortCreatedDesc}
	switch mode {
	case domain.FeedTrending:
		since := s.now().Add(-domain.TrendingWindow)
		query.CreatedAfter = &since
		query.Sort = domain.PostSortEngagement
	case domain.FeedFollowing:
		follower := *viewer
		query.FollowedBy = &follower
	case domain.Feed3D:
		query.Only3D = true
	}

	if mode != domain.Feed3D && viewer != nil {
		show3D, err := s.show3D(ctx, *viewer)
		if err != nil {
			return domain.PostQuery{}, mode, err
		}
		query.Exclude3D = !show3D
	}
	return query, mode, nil
}

func (s *FeedService) show3D(ctx context.Context, viewer uuid.UUID) (bool, error) {
	if s.prefs == nil {
		return true, nil
	}
	pref, err := s.prefs.Get(ctx, viewer)
	if err != nil {
		if isNotFound(err) {
			return domain.DefaultPreference(viewer).Show3DContent, nil
		}
		return false, err
	}
	return pref.Show3DContent, nil
}

// decoratePosts fills per-viewer and relation fields in place.
func decoratePosts(ctx context.Context, repo ports.PostRepository, posts []domain.Post, viewer *uuid.UUID) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	tags, err := repo.TagsFor(ctx, ids)
	if err != nil {
		return err
	}
	var liked map[uuid.UUID]bool
	if viewer != nil {
		if liked, err = repo.LikedBy(ctx, *viewer, ids); err != nil {
			return err
		}
	}
	for i := range posts {
		posts[i].FloorCounters()
		posts[i].Tags = tags[posts[i].ID]
		if posts[i].Tags == nil {
			posts[i].Tags = []string{}
		}
		posts[i].IsLiked = liked[posts[i].ID]
	}
	return nil
}
