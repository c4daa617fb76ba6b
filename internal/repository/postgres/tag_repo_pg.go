package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
)

type TagRepository struct {
	db *sqlx.DB
}

func NewTagRepo(db *sqlx.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) Popular(ctx context.Context, limit, offset int) ([]domain.Tag, error) {
	const query = `
		SELECT id, name, posts_count, created_at
		FROM post_tag
		WHERE posts_count > 0
		ORDER BY posts_count DESC, name ASC
		LIMIT $1 OFFSET $2
	`
	tags := make([]domain.Tag, 0)
	if err := r.db.SelectContext(ctx, &tags, query, limit, offset); err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *TagRepository) CountPopular(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM post_tag WHERE posts_count > 0`); err != nil {
		return 0, err
	}
	return total, nil
}

var _ ports.TagRepository = (*TagRepository)(nil)
