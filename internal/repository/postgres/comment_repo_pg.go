package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
)

const commentColumns = `
	c.id, c.post_id, c.user_id, c.parent_id, c.content, c.likes_count, c.created_at, c.updated_at,
` + authorColumns

type CommentRepository struct {
	db *sqlx.DB
}

func NewCommentRepo(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM post_comment c
		JOIN user_account u ON u.id = c.user_id
		WHERE c.id = $1
	`
	var comment domain.Comment
	if err := r.db.GetContext(ctx, &comment, query, id); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepository) ListTopLevel(ctx context.Context, postID uuid.UUID, limit, offset int) ([]domain.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM post_comment c
		JOIN user_account u ON u.id = c.user_id
		WHERE c.post_id = $1 AND c.parent_id IS NULL
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $2 OFFSET $3
	`
	comments := make([]domain.Comment, 0)
	if err := r.db.SelectContext(ctx, &comments, query, postID, limit, offset); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *CommentRepository) CountTopLevel(ctx context.Context, postID uuid.UUID) (int64, error) {
	const query = `SELECT COUNT(*) FROM post_comment WHERE post_id = $1 AND parent_id IS NULL`
	var total int64
	if err := r.db.GetContext(ctx, &total, query, postID); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *CommentRepository) ListReplies(ctx context.Context, parentIDs []uuid.UUID, perParent int) (map[uuid.UUID][]domain.Comment, error) {
	result := make(map[uuid.UUID][]domain.Comment, len(parentIDs))
	if len(parentIDs) == 0 || perParent <= 0 {
		return result, nil
	}
	query := `
		SELECT ` + commentColumns + `
		FROM (
			SELECT pc.*, ROW_NUMBER() OVER (PARTITION BY pc.parent_id ORDER BY pc.created_at ASC, pc.id ASC) AS rn
			FROM post_comment pc
			WHERE pc.parent_id = ANY($1)
		) c
		JOIN user_account u ON u.id = c.user_id
		WHERE c.rn <= $2
		ORDER BY c.parent_id, c.created_at ASC, c.id ASC
	`
	replies := make([]domain.Comment, 0)
	if err := r.db.SelectContext(ctx, &replies, query, pq.Array(parentIDs), perParent); err != nil {
		return nil, err
	}
	for _, reply := range replies {
		if reply.ParentID == nil {
			continue
		}
		reply.Replies = []domain.Comment{}
		result[*reply.ParentID] = append(result[*reply.ParentID], reply)
	}
	return result, nil
}

var _ ports.CommentRepository = (*CommentRepository)(nil)
