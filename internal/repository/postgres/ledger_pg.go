package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
)

type counterColumn struct {
	table  string
	column string
}

// counterColumns is the only source of identifiers interpolated into ledger SQL.
var counterColumns = map[domain.Counter]counterColumn{
	domain.CounterPostLikes:         {"travel_post", "likes_count"},
	domain.CounterPostComments:      {"travel_post", "comments_count"},
	domain.CounterPostShares:        {"travel_post", "shares_count"},
	domain.CounterPostViews:         {"travel_post", "views_count"},
	domain.CounterAccountFollowers:  {"user_account", "followers_count"},
	domain.CounterAccountFollowing:  {"user_account", "following_count"},
	domain.CounterAccountTotalLikes: {"user_account", "total_likes"},
	domain.CounterAccountTotalViews: {"user_account", "total_views"},
	domain.CounterDestinationPosts:  {"destination", "posts_count"},
	domain.CounterDestinationVisits: {"destination", "visits_count"},
	domain.CounterTagPosts:          {"post_tag", "posts_count"},
}

type relationTable struct {
	table     string
	actorCol  string
	targetCol string
}

var relationTables = map[domain.RelationKind]relationTable{
	domain.RelationLike:   {"post_like", "user_id", "post_id"},
	domain.RelationFollow: {"user_follow", "follower_id", "following_id"},
}

type Ledger struct {
	db *sqlx.DB
}

func NewLedger(db *sqlx.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) WithinTx(ctx context.Context, fn func(tx ports.LedgerTx) error) error {
	return withinTx(ctx, l.db, func(tx *sqlx.Tx) error {
		return fn(&ledgerTx{tx: tx})
	})
}

type ledgerTx struct {
	tx *sqlx.Tx
}

func (t *ledgerTx) Adjust(ctx context.Context, ref domain.CounterRef, delta int64) (int64, error) {
	col, ok := counterColumns[ref.Counter]
	if !ok {
		return 0, fmt.Errorf("ledger: unknown counter %q", ref.Counter)
	}
	// No clamp: a decrement below zero violates the column's CHECK (>= 0)
	// and aborts the transaction.
	query := fmt.Sprintf(
		`UPDATE %[1]s SET %[2]s = %[2]s + $2 WHERE id = $1 RETURNING %[2]s`,
		col.table, col.column,
	)
	var value int64
	if err := t.tx.GetContext(ctx, &value, query, ref.EntityID, delta); err != nil {
		return 0, err
	}
	return value, nil
}

func (t *ledgerTx) Read(ctx context.Context, ref domain.CounterRef) (int64, error) {
	col, ok := counterColumns[ref.Counter]
	if !ok {
		return 0, fmt.Errorf("ledger: unknown counter %q", ref.Counter)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, col.column, col.table)
	var value int64
	if err := t.tx.GetContext(ctx, &value, query, ref.EntityID); err != nil {
		return 0, err
	}
	return domain.Floor(value), nil
}

func (t *ledgerTx) RemoveRelation(ctx context.Context, rel domain.Relation) (bool, error) {
	table, ok := relationTables[rel.Kind]
	if !ok {
		return false, fmt.Errorf("ledger: unknown relation %q", rel.Kind)
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, table.table, table.actorCol, table.targetCol)
	result, err := t.tx.ExecContext(ctx, query, rel.ActorID, rel.TargetID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (t *ledgerTx) AddRelation(ctx context.Context, rel domain.Relation) error {
	table, ok := relationTables[rel.Kind]
	if !ok {
		return fmt.Errorf("ledger: unknown relation %q", rel.Kind)
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2)`, table.table, table.actorCol, table.targetCol)
	_, err := t.tx.ExecContext(ctx, query, rel.ActorID, rel.TargetID)
	return err
}

func (t *ledgerTx) InsertPost(ctx context.Context, input domain.PostCreate) (*domain.Post, error) {
	const query = `
		INSERT INTO travel_post (
			user_id, destination_id, video_url, thumbnail_url, description,
			music_name, music_artist, featured_3d, is_featured, is_public,
			duration_seconds, file_size_mb
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, user_id, destination_id, video_url, thumbnail_url, description,
			music_name, music_artist, featured_3d, is_featured, is_public,
			likes_count, comments_count, shares_count, views_count,
			duration_seconds, file_size_mb, created_at, updated_at
	`
	var post domain.Post
	row := t.tx.QueryRowxContext(ctx, query,
		input.UserID, input.DestinationID, input.VideoURL, input.ThumbnailURL, input.Description,
		input.MusicName, input.MusicArtist, input.Featured3D, input.IsFeatured, input.IsPublic,
		input.DurationSeconds, input.FileSizeMB,
	)
	if err := row.StructScan(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (t *ledgerTx) DeletePost(ctx context.Context, id uuid.UUID) error {
	result, err := t.tx.ExecContext(ctx, `DELETE FROM travel_post WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (t *ledgerTx) UpsertTags(ctx context.Context, names []string) ([]domain.Tag, error) {
	tags := make([]domain.Tag, 0, len(names))
	if len(names) == 0 {
		return tags, nil
	}
	const query = `
		INSERT INTO post_tag (name)
		SELECT unnest($1::text[])
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, posts_count, created_at
	`
	if err := t.tx.SelectContext(ctx, &tags, query, pq.Array(names)); err != nil {
		return nil, err
	}
	return tags, nil
}

func (t *ledgerTx) LinkTags(ctx context.Context, postID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}
	const query = `
		INSERT INTO post_tag_relation (post_id, tag_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT (post_id, tag_id) DO NOTHING
	`
	_, err := t.tx.ExecContext(ctx, query, postID, pq.Array(tagIDs))
	return err
}

func (t *ledgerTx) TagIDsForPost(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	const query = `
		SELECT r.tag_id
		FROM post_tag_relation r
		JOIN post_tag t ON t.id = r.tag_id
		WHERE r.post_id = $1
		ORDER BY t.name
	`
	if err := t.tx.SelectContext(ctx, &ids, query, postID); err != nil {
		return nil, err
	}
	return ids, nil
}

func (t *ledgerTx) InsertComment(ctx context.Context, input domain.CommentCreate) (*domain.Comment, error) {
	const query = `
		WITH inserted AS (
			INSERT INTO post_comment (post_id, user_id, parent_id, content)
			VALUES ($1, $2, $3, $4)
			RETURNING id, post_id, user_id, parent_id, content, likes_count, created_at, updated_at
		)
		SELECT
			c.id, c.post_id, c.user_id, c.parent_id, c.content, c.likes_count, c.created_at, c.updated_at,
			` + authorColumns + `
		FROM inserted c
		JOIN user_account u ON u.id = c.user_id
	`
	var comment domain.Comment
	row := t.tx.QueryRowxContext(ctx, query, input.PostID, input.UserID, input.ParentID, input.Content)
	if err := row.StructScan(&comment); err != nil {
		return nil, err
	}
	comment.Replies = []domain.Comment{}
	return &comment, nil
}

func (t *ledgerTx) InsertShare(ctx context.Context, postID, userID uuid.UUID, platform domain.SharePlatform) (*domain.Share, error) {
	const query = `
		INSERT INTO post_share (post_id, user_id, platform)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, user_id, platform, created_at
	`
	var share domain.Share
	if err := t.tx.QueryRowxContext(ctx, query, postID, userID, platform).StructScan(&share); err != nil {
		return nil, err
	}
	return &share, nil
}

func (t *ledgerTx) InsertView(ctx context.Context, view domain.PostView) error {
	const query = `
		INSERT INTO post_view (post_id, user_id, ip_address, user_agent, view_duration_seconds)
		VALUES ($1, $2, $3::inet, $4, $5)
	`
	_, err := t.tx.ExecContext(ctx, query, view.PostID, view.UserID, view.IPAddress, view.UserAgent, view.DurationSeconds)
	return err
}

var _ ports.Ledger = (*Ledger)(nil)
var _ ports.LedgerTx = (*ledgerTx)(nil)
