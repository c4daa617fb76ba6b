package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
)

// Ledger runs engagement writes and their counter adjustments in one
// transaction. fn's error rolls the transaction back.
type Ledger interface {
	WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error
}

type LedgerTx interface {
	// Adjust adds delta to one counter and returns the new value. A result
	// below zero is a check violation, not a clamp.
	Adjust(ctx context.Context, ref domain.CounterRef, delta int64) (int64, error)
	// Read floors the stored value at zero.
	Read(ctx context.Context, ref domain.CounterRef) (int64, error)

	// RemoveRelation reports whether a row was deleted.
	RemoveRelation(ctx context.Context, rel domain.Relation) (bool, error)
	AddRelation(ctx context.Context, rel domain.Relation) error

	InsertPost(ctx context.Context, input domain.PostCreate) (*domain.Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) error
	UpsertTags(ctx context.Context, names []string) ([]domain.Tag, error)
	LinkTags(ctx context.Context, postID uuid.UUID, tagIDs []uuid.UUID) error
	// TagIDsForPost returns the post's tag ids ordered by tag name.
	TagIDsForPost(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error)

	InsertComment(ctx context.Context, input domain.CommentCreate) (*domain.Comment, error)
	InsertShare(ctx context.Context, postID, userID uuid.UUID, platform domain.SharePlatform) (*domain.Share, error)
	InsertView(ctx context.Context, view domain.PostView) error
}
