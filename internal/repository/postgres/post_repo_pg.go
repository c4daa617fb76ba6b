package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
)

const authorColumns = `
	u.id AS "author.id",
	u.username AS "author.username",
	u.first_name AS "author.first_name",
	u.last_name AS "author.last_name",
	u.avatar_url AS "author.avatar_url",
	u.verified AS "author.verified",
	u.followers_count AS "author.followers_count",
	u.following_count AS "author.following_count"
`

const postColumns = `
	p.id,
	p.user_id,
	p.destination_id,
	p.video_url,
	p.thumbnail_url,
	p.description,
	p.music_name,
	p.music_artist,
	p.featured_3d,
	p.is_featured,
	p.is_public,
	p.likes_count,
	p.comments_count,
	p.shares_count,
	p.views_count,
	p.duration_seconds,
	p.file_size_mb,
	p.created_at,
	p.updated_at,
	d.id AS "destination.id",
	d.name AS "destination.name",
	d.country AS "destination.country",
	d.city AS "destination.city",
	d.latitude AS "destination.latitude",
	d.longitude AS "destination.longitude",
	d.featured_image_url AS "destination.featured_image_url",
	d.has_3d_model AS "destination.has_3d_model",
	d.model_type AS "destination.model_type",
	d.posts_count AS "destination.posts_count",
` + authorColumns

const postFrom = `
	FROM travel_post p
	JOIN user_account u ON u.id = p.user_id
	JOIN destination d ON d.id = p.destination_id
`

type PostRepository struct {
	db *sqlx.DB
}

func NewPostRepo(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) List(ctx context.Context, query domain.PostQuery) ([]domain.Post, error) {
	where, params := postFilter(query)

	var builder strings.Builder
	builder.WriteString(`SELECT ` + postColumns + postFrom + ` WHERE ` + where)
	builder.WriteString("\n\tORDER BY " + postOrder(query.Sort))

	if query.Limit > 0 {
		limitPlaceholder := fmt.Sprintf("$%d", len(params)+1)
		offsetPlaceholder := fmt.Sprintf("$%d", len(params)+2)
		builder.WriteString(`
		LIMIT ` + limitPlaceholder + ` OFFSET ` + offsetPlaceholder + `
	`)
		params = append(params, query.Limit, max(query.Offset, 0))
	}

	posts := make([]domain.Post, 0)
	if err := r.db.SelectContext(ctx, &posts, builder.String(), params...); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) Count(ctx context.Context, query domain.PostQuery) (int64, error) {
	where, params := postFilter(query)
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) `+postFrom+` WHERE `+where, params...); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *PostRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	query := `SELECT ` + postColumns + postFrom + ` WHERE p.id = $1`
	var post domain.Post
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) Update(ctx context.Context, id uuid.UUID, update domain.PostUpdate) error {
	const query = `
		UPDATE travel_post
		SET description = COALESCE($2, description),
		    music_name = COALESCE($3, music_name),
		    music_artist = COALESCE($4, music_artist),
		    featured_3d = COALESCE($5, featured_3d),
		    is_public = COALESCE($6, is_public),
		    updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id,
		update.Description, update.MusicName, update.MusicArtist, update.Featured3D, update.IsPublic,
	)
	return err
}

func (r *PostRepository) TagsFor(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	result := make(map[uuid.UUID][]string, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}
	const query = `
		SELECT r.post_id, t.name
		FROM post_tag_relation r
		JOIN post_tag t ON t.id = r.tag_id
		WHERE r.post_id = ANY($1)
		ORDER BY t.name ASC
	`
	rows := []struct {
		PostID uuid.UUID `db:"post_id"`
		Name   string    `db:"name"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(postIDs)); err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.PostID] = append(result[row.PostID], row.Name)
	}
	return result, nil
}

func (r *PostRepository) LikedBy(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}
	const query = `
		SELECT post_id FROM post_like
		WHERE user_id = $1 AND post_id = ANY($2)
	`
	liked := make([]uuid.UUID, 0)
	if err := r.db.SelectContext(ctx, &liked, query, userID, pq.Array(postIDs)); err != nil {
		return nil, err
	}
	for _, id := range liked {
		result[id] = true
	}
	return result, nil
}

func postFilter(q domain.PostQuery) (string, []any) {
	clauses := []string{"p.is_public"}
	params := make([]any, 0, 8)
	next := func(value any) string {
		params = append(params, value)
		return fmt.Sprintf("$%d", len(params))
	}

	if q.CreatedAfter != nil {
		clauses = append(clauses, "p.created_at >= "+next(*q.CreatedAfter))
	}
	if q.FollowedBy != nil {
		clauses = append(clauses, "p.user_id IN (SELECT following_id FROM user_follow WHERE follower_id = "+next(*q.FollowedBy)+")")
	}
	if q.Only3D {
		clauses = append(clauses, "p.featured_3d")
	} else if q.Exclude3D {
		clauses = append(clauses, "NOT p.featured_3d")
	}
	if username := strings.TrimSpace(q.AuthorUsername); username != "" {
		clauses = append(clauses, "u.username = "+next(username))
	}
	if q.DestinationID != nil {
		clauses = append(clauses, "p.destination_id = "+next(*q.DestinationID))
	}
	if country := strings.TrimSpace(q.Country); country != "" {
		clauses = append(clauses, "d.country ILIKE "+next(likePattern(country)))
	}
	if len(q.Tags) > 0 {
		clauses = append(clauses, `EXISTS (
			SELECT 1 FROM post_tag_relation tr
			JOIN post_tag t ON t.id = tr.tag_id
			WHERE tr.post_id = p.id AND t.name = ANY(`+next(pq.StringArray(q.Tags))+`)
		)`)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		placeholder := next(likePattern(search))
		clauses = append(clauses, "(p.description ILIKE "+placeholder+
			" OR u.username ILIKE "+placeholder+" OR d.name ILIKE "+placeholder+")")
	}
	return strings.Join(clauses, " AND "), params
}

func postOrder(sort domain.PostSort) string {
	switch sort {
	case domain.PostSortCreatedAsc:
		return "p.created_at ASC, p.id ASC"
	case domain.PostSortLikesDesc:
		return "p.likes_count DESC, p.created_at DESC"
	case domain.PostSortLikesAsc:
		return "p.likes_count ASC, p.created_at DESC"
	case domain.PostSortViewsDesc:
		return "p.views_count DESC, p.created_at DESC"
	case domain.PostSortViewsAsc:
		return "p.views_count ASC, p.created_at DESC"
	case domain.PostSortEngagement:
		return "(p.likes_count + 2 * p.comments_count + 3 * p.shares_count) DESC, p.created_at DESC, p.id DESC"
	default:
		return "p.created_at DESC, p.id DESC"
	}
}

var _ ports.PostRepository = (*PostRepository)(nil)
