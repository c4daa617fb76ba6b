package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
)

type TrendingRepository struct {
	db *sqlx.DB
}

func NewTrendingRepo(db *sqlx.DB) *TrendingRepository {
	return &TrendingRepository{db: db}
}

func (r *TrendingRepository) Activity(ctx context.Context, dayStart, weekStart time.Time) ([]domain.DestinationActivity, error) {
	const query = `
		SELECT
			d.id AS destination_id,
			COUNT(p.id) FILTER (WHERE p.created_at >= $1) AS posts_last_24h,
			COUNT(p.id) AS posts_last_week,
			COALESCE(SUM(p.likes_count + p.comments_count + p.shares_count), 0) AS engagement
		FROM destination d
		LEFT JOIN travel_post p ON p.destination_id = d.id AND p.created_at >= $2
		GROUP BY d.id
	`
	rows := make([]domain.DestinationActivity, 0)
	if err := r.db.SelectContext(ctx, &rows, query, dayStart, weekStart); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *TrendingRepository) Upsert(ctx context.Context, rows []domain.TrendingDestination) error {
	if len(rows) == 0 {
		return nil
	}

	const query = `
		INSERT INTO trending_destination (
			destination_id, score, posts_last_24h, posts_last_week, engagement_rate, updated_at
		) VALUES (
			:destination_id, :score, :posts_last_24h, :posts_last_week, :engagement_rate, :updated_at
		)
		ON CONFLICT (destination_id)
		DO UPDATE SET
			score = EXCLUDED.score,
			posts_last_24h = EXCLUDED.posts_last_24h,
			posts_last_week = EXCLUDED.posts_last_week,
			engagement_rate = EXCLUDED.engagement_rate,
			updated_at = EXCLUDED.updated_at
	`

	params := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		params = append(params, map[string]any{
			"destination_id":  row.DestinationID,
			"score":           row.Score,
			"posts_last_24h":  row.PostsLast24h,
			"posts_last_week": row.PostsLastWeek,
			"engagement_rate": row.EngagementRate,
			"updated_at":      row.UpdatedAt,
		})
	}
	_, err := r.db.NamedExecContext(ctx, query, params)
	return err
}

func (r *TrendingRepository) List(ctx context.Context, limit, offset int) ([]domain.TrendingDestination, error) {
	const query = `
		SELECT
			t.destination_id,
			t.score,
			t.posts_last_24h,
			t.posts_last_week,
			t.engagement_rate,
			t.updated_at,
			d.id AS "destination.id",
			d.name AS "destination.name",
			d.country AS "destination.country",
			d.city AS "destination.city",
			d.latitude AS "destination.latitude",
			d.longitude AS "destination.longitude",
			d.description AS "destination.description",
			d.featured_image_url AS "destination.featured_image_url",
			d.has_3d_model AS "destination.has_3d_model",
			d.model_type AS "destination.model_type",
			d.posts_count AS "destination.posts_count",
			d.visits_count AS "destination.visits_count",
			d.created_at AS "destination.created_at",
			t.score > 0 AS "destination.is_trending"
		FROM trending_destination t
		JOIN destination d ON d.id = t.destination_id
		ORDER BY t.score DESC, d.name ASC
		LIMIT $1 OFFSET $2
	`
	rows := make([]domain.TrendingDestination, 0)
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *TrendingRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM trending_destination`); err != nil {
		return 0, err
	}
	return total, nil
}

var _ ports.TrendingRepository = (*TrendingRepository)(nil)
