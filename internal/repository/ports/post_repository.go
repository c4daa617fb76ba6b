package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
)

type PostRepository interface {
	List(ctx context.Context, query domain.PostQuery) ([]domain.Post, error)
	Count(ctx context.Context, query domain.PostQuery) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	Update(ctx context.Context, id uuid.UUID, update domain.PostUpdate) error
	TagsFor(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]string, error)
	LikedBy(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type CommentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	ListTopLevel(ctx context.Context, postID uuid.UUID, limit, offset int) ([]domain.Comment, error)
	CountTopLevel(ctx context.Context, postID uuid.UUID) (int64, error)
	// ListReplies returns at most perParent oldest replies for each parent.
	ListReplies(ctx context.Context, parentIDs []uuid.UUID, perParent int) (map[uuid.UUID][]domain.Comment, error)
}

type TagRepository interface {
	Popular(ctx context.Context, limit, offset int) ([]domain.Tag, error)
	CountPopular(ctx context.Context) (int64, error)
}

type PreferenceRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.UserPreference, error)
	Save(ctx context.Context, pref domain.UserPreference) (*domain.UserPreference, error)
}

type SearchRepository interface {
	Users(ctx context.Context, query string, limit int) ([]domain.PublicProfile, error)
	Destinations(ctx context.Context, query string, limit int) ([]domain.Destination, error)
	Posts(ctx context.Context, query string, limit int) ([]domain.Post, error)
	Tags(ctx context.Context, query string, limit int) ([]domain.Tag, error)
}
