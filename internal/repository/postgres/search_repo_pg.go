package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
)

// SearchRepository matches case-insensitively anywhere in the searched fields
// and ranks by where the match starts in the primary field.
type SearchRepository struct {
	db *sqlx.DB
}

func NewSearchRepo(db *sqlx.DB) *SearchRepository {
	return &SearchRepository{db: db}
}

func (r *SearchRepository) Users(ctx context.Context, query string, limit int) ([]domain.PublicProfile, error) {
	const stmt = `
		SELECT
			u.id, u.username, u.first_name, u.last_name, u.bio, u.avatar_url, u.verified,
			u.followers_count, u.following_count, u.total_likes, u.total_views, u.created_at,
			(SELECT COUNT(*) FROM travel_post p WHERE p.user_id = u.id AND p.is_public) AS posts_count
		FROM user_account u
		WHERE u.username ILIKE $1 OR u.first_name ILIKE $1 OR u.last_name ILIKE $1
		ORDER BY NULLIF(strpos(lower(u.username), lower($2)), 0) ASC NULLS LAST, u.username ASC
		LIMIT $3
	`
	users := make([]domain.PublicProfile, 0)
	if err := r.db.SelectContext(ctx, &users, stmt, likePattern(query), query, limit); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *SearchRepository) Destinations(ctx context.Context, query string, limit int) ([]domain.Destination, error) {
	stmt := `
		SELECT ` + destinationColumns + `
		FROM destination d
		WHERE d.name ILIKE $1 OR d.country ILIKE $1 OR d.city ILIKE $1
		ORDER BY NULLIF(strpos(lower(d.name), lower($2)), 0) ASC NULLS LAST, d.posts_count DESC, d.name ASC
		LIMIT $3
	`
	destinations := make([]domain.Destination, 0)
	if err := r.db.SelectContext(ctx, &destinations, stmt, likePattern(query), query, limit); err != nil {
		return nil, err
	}
	return destinations, nil
}

func (r *SearchRepository) Posts(ctx context.Context, query string, limit int) ([]domain.Post, error) {
	stmt := `
		SELECT ` + postColumns + postFrom + `
		WHERE p.is_public AND (p.description ILIKE $1 OR u.username ILIKE $1)
		ORDER BY NULLIF(strpos(lower(p.description), lower($2)), 0) ASC NULLS LAST, p.created_at DESC, p.id DESC
		LIMIT $3
	`
	posts := make([]domain.Post, 0)
	if err := r.db.SelectContext(ctx, &posts, stmt, likePattern(query), query, limit); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *SearchRepository) Tags(ctx context.Context, query string, limit int) ([]domain.Tag, error) {
	const stmt = `
		SELECT id, name, posts_count, created_at
		FROM post_tag
		WHERE name ILIKE $1
		ORDER BY NULLIF(strpos(lower(name), lower($2)), 0) ASC NULLS LAST, posts_count DESC, name ASC
		LIMIT $3
	`
	tags := make([]domain.Tag, 0)
	if err := r.db.SelectContext(ctx, &tags, stmt, likePattern(query), query, limit); err != nil {
		return nil, err
	}
	return tags, nil
}

var _ ports.SearchRepository = (*SearchRepository)(nil)
