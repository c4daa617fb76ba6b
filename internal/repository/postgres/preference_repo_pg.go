package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
)

type PreferenceRepository struct {
	db *sqlx.DB
}

func NewPreferenceRepo(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

func (r *PreferenceRepository) Get(ctx context.Context, userID uuid.UUID) (*domain.UserPreference, error) {
	const query = `
		SELECT user_id, show_3d_content, auto_play_videos, show_trending, updated_at
		FROM user_preference
		WHERE user_id = $1
	`
	var pref domain.UserPreference
	if err := r.db.GetContext(ctx, &pref, query, userID); err != nil {
		return nil, err
	}
	if err := loadPreferenceLinks(ctx, r.db, &pref); err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *PreferenceRepository) Save(ctx context.Context, pref domain.UserPreference) (*domain.UserPreference, error) {
	var saved domain.UserPreference
	err := withinTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const upsert = `
			INSERT INTO user_preference (user_id, show_3d_content, auto_play_videos, show_trending)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id) DO UPDATE SET
				show_3d_content = EXCLUDED.show_3d_content,
				auto_play_videos = EXCLUDED.auto_play_videos,
				show_trending = EXCLUDED.show_trending,
				updated_at = NOW()
			RETURNING user_id, show_3d_content, auto_play_videos, show_trending, updated_at
		`
		row := tx.QueryRowxContext(ctx, upsert, pref.UserID, pref.Show3DContent, pref.AutoPlayVideos, pref.ShowTrending)
		if err := row.StructScan(&saved); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM user_preference_destination WHERE user_id = $1`, pref.UserID); err != nil {
			return err
		}
		if len(pref.PreferredDestinations) > 0 {
			const link = `
				INSERT INTO user_preference_destination (user_id, destination_id)
				SELECT $1, unnest($2::uuid[])
				ON CONFLICT DO NOTHING
			`
			if _, err := tx.ExecContext(ctx, link, pref.UserID, pq.Array(pref.PreferredDestinations)); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM user_preference_tag WHERE user_id = $1`, pref.UserID); err != nil {
			return err
		}
		if len(pref.FavoriteTags) > 0 {
			const link = `
				INSERT INTO user_preference_tag (user_id, tag_id)
				SELECT $1, unnest($2::uuid[])
				ON CONFLICT DO NOTHING
			`
			if _, err := tx.ExecContext(ctx, link, pref.UserID, pq.Array(pref.FavoriteTags)); err != nil {
				return err
			}
		}
		return loadPreferenceLinks(ctx, tx, &saved)
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func loadPreferenceLinks(ctx context.Context, q sqlx.QueryerContext, pref *domain.UserPreference) error {
	pref.PreferredDestinations = make([]uuid.UUID, 0)
	if err := sqlx.SelectContext(ctx, q, &pref.PreferredDestinations,
		`SELECT destination_id FROM user_preference_destination WHERE user_id = $1`, pref.UserID); err != nil {
		return err
	}
	pref.FavoriteTags = make([]uuid.UUID, 0)
	return sqlx.SelectContext(ctx, q, &pref.FavoriteTags,
		`SELECT tag_id FROM user_preference_tag WHERE user_id = $1`, pref.UserID)
}

var _ ports.PreferenceRepository = (*PreferenceRepository)(nil)
