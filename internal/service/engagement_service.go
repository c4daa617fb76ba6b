package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/metrics"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
)

const (
	MaxCommentLength  = 500
	repliesPerComment = 3
)

// EngagementService owns every write that moves a denormalized counter:
// like and follow toggles, shares and comments.
type EngagementService struct {
	ledger   ports.Ledger
	posts    ports.PostRepository
	accounts ports.AccountRepository
	comments ports.CommentRepository
	limits   PageLimits
}

type ShareResult struct {
	Share       *domain.Share
	SharesCount int64
}

func NewEngagementService(ledger ports.Ledger, posts ports.PostRepository, accounts ports.AccountRepository, comments ports.CommentRepository, limits PageLimits) *EngagementService {
	return &EngagementService{
		ledger:   ledger,
		posts:    posts,
		accounts: accounts,
		comments: comments,
		limits:   limits,
	}
}

func (s *EngagementService) ToggleLike(ctx context.Context, userID, postID uuid.UUID) (*domain.ToggleResult, error) {
	if _, err := s.visiblePost(ctx, postID); err != nil {
		return nil, err
	}
	return s.toggle(ctx, domain.LikeOf(userID, postID))
}

func (s *EngagementService) ToggleFollow(ctx context.Context, followerID, followingID uuid.UUID) (*domain.ToggleResult, error) {
	if followerID == followingID {
		return nil, ErrSelfFollow
	}
	if _, err := s.accounts.FindByID(ctx, followingID); err != nil {
		if isNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return s.toggle(ctx, domain.FollowOf(followerID, followingID))
}

// toggle flips the relation and moves its counters by the same sign in one
// transaction. A concurrent duplicate insert, deadlock or serialization
// failure surfaces as ErrToggleConflict.
func (s *EngagementService) toggle(ctx context.Context, rel domain.Relation) (*domain.ToggleResult, error) {
	result := &domain.ToggleResult{Relation: rel, Counts: make(map[domain.Counter]int64)}

	err := s.ledger.WithinTx(ctx, func(tx ports.LedgerTx) error {
		removed, err := tx.RemoveRelation(ctx, rel)
		if err != nil {
			return err
		}
		delta := int64(-1)
		if !removed {
			if err := tx.AddRelation(ctx, rel); err != nil {
				return err
			}
			delta = 1
		}
		result.Present = !removed

		for _, ref := range domain.LockOrder(rel.Counters()) {
			value, err := tx.Adjust(ctx, ref, delta)
			if err != nil {
				return err
			}
			result.Counts[ref.Counter] = value
		}
		return nil
	})
	if err != nil {
		switch {
		case isUniqueViolation(err), isTxConflict(err):
			metrics.ToggleConflicts.WithLabelValues(string(rel.Kind)).Inc()
			return nil, ErrToggleConflict
		case isNotFound(err), isForeignKeyViolation(err):
			if rel.Kind == domain.RelationLike {
				return nil, ErrPostNotFound
			}
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	state := "removed"
	if result.Present {
		state = "added"
	}
	metrics.Toggles.WithLabelValues(string(rel.Kind), state).Inc()
	return result, nil
}

func (s *EngagementService) Share(ctx context.Context, userID, postID uuid.UUID, platform domain.SharePlatform) (*ShareResult, error) {
	if platform == "" {
		platform = domain.ShareNative
	}
	if !platform.Valid() {
		return nil, fmt.Errorf("%w: unknown share platform %q", ErrValidation, platform)
	}
	if _, err := s.visiblePost(ctx, postID); err != nil {
		return nil, err
	}

	var result ShareResult
	err := s.ledger.WithinTx(ctx, func(tx ports.LedgerTx) error {
		share, err := tx.InsertShare(ctx, postID, userID, platform)
		if err != nil {
			return err
		}
		count, err := tx.Adjust(ctx, domain.CounterRef{Counter: domain.CounterPostShares, EntityID: postID}, 1)
		if err != nil {
			return err
		}
		result = ShareResult{Share: share, SharesCount: count}
		return nil
	})
	if err != nil {
		if isNotFound(err) || isForeignKeyViolation(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (s *EngagementService) AddComment(ctx context.Context, userID, postID uuid.UUID, content string, parentID *uuid.UUID) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return nil, fmt.Errorf("%w: content must be at most %d characters", ErrValidation, MaxCommentLength)
	}
	if _, err := s.visiblePost(ctx, postID); err != nil {
		return nil, err
	}

	if parentID != nil {
		parent, err := s.comments.FindByID(ctx, *parentID)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrCommentNotFound
			}
			return nil, err
		}
		if parent.PostID != postID {
			return nil, fmt.Errorf("%w: parent comment belongs to another post", ErrValidation)
		}
		// replies stay two levels deep
		if parent.ParentID != nil {
			parentID = parent.ParentID
		}
	}

	var comment *domain.Comment
	err := s.ledger.WithinTx(ctx, func(tx ports.LedgerTx) error {
		created, err := tx.InsertComment(ctx, domain.CommentCreate{
			PostID:   postID,
			UserID:   userID,
			ParentID: parentID,
			Content:  content,
		})
		if err != nil {
			return err
		}
		if _, err := tx.Adjust(ctx, domain.CounterRef{Counter: domain.CounterPostComments, EntityID: postID}, 1); err != nil {
			return err
		}
		comment = created
		return nil
	})
	if err != nil {
		if isNotFound(err) || isForeignKeyViolation(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return comment, nil
}

func (s *EngagementService) ListComments(ctx context.Context, postID uuid.UUID, page domain.Page) (*domain.PageResult[domain.Comment], error) {
	if _, err := s.visiblePost(ctx, postID); err != nil {
		return nil, err
	}
	page = s.limits.normalize(page)

	comments, err := s.comments.ListTopLevel(ctx, postID, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	total, err := s.comments.CountTopLevel(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := attachReplies(ctx, s.comments, comments); err != nil {
		return nil, err
	}
	return &domain.PageResult[domain.Comment]{
		Items:    comments,
		Total:    total,
		Page:     page.Number,
		PageSize: page.Size,
	}, nil
}

func (s *EngagementService) visiblePost(ctx context.Context, postID uuid.UUID) (*domain.Post, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if !post.IsPublic {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func attachReplies(ctx context.Context, repo ports.CommentRepository, comments []domain.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}
	replies, err := repo.ListReplies(ctx, ids, repliesPerComment)
	if err != nil {
		return err
	}
	for i := range comments {
		comments[i].Replies = replies[comments[i].ID]
		if comments[i].Replies == nil {
			comments[i].Replies = []domain.Comment{}
		}
	}
	return nil
}
