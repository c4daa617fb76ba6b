package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
)

const accountColumns = `
	id, username, email, first_name, last_name, bio, avatar_url, verified,
	password_hash, password_salt, followers_count, following_count,
	total_likes, total_views, created_at, updated_at
`

type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepo(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, input domain.AccountCreate) (*domain.Account, error) {
	query := `
		INSERT INTO user_account (username, email, first_name, last_name, bio, password_hash, password_salt)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + accountColumns

	var account domain.Account
	row := r.db.QueryRowxContext(ctx, query,
		input.Username, input.Email, input.FirstName, input.LastName, input.Bio,
		input.PasswordHash, input.PasswordSalt,
	)
	if err := row.StructScan(&account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) UpsertGoogle(ctx context.Context, email, username, firstName, lastName string, avatarURL *string) (*domain.Account, error) {
	query := `
		INSERT INTO user_account (email, username, first_name, last_name, avatar_url, verified)
		VALUES ($1, $2, $3, $4, $5, true)
		ON CONFLICT (email) DO UPDATE
		SET first_name = COALESCE(NULLIF(user_account.first_name, ''), EXCLUDED.first_name),
		    last_name = COALESCE(NULLIF(user_account.last_name, ''), EXCLUDED.last_name),
		    avatar_url = COALESCE(user_account.avatar_url, EXCLUDED.avatar_url),
		    verified = true,
		    updated_at = NOW()
		RETURNING ` + accountColumns

	var account domain.Account
	row := r.db.QueryRowxContext(ctx, query, email, username, firstName, lastName, avatarURL)
	if err := row.StructScan(&account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM user_account WHERE id = $1`, id)
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM user_account WHERE username = $1`, username)
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM user_account WHERE lower(email) = lower($1)`, email)
}

func (r *AccountRepository) findOne(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var account domain.Account
	if err := r.db.GetContext(ctx, &account, query, arg); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) Update(ctx context.Context, id uuid.UUID, update domain.AccountUpdate) (*domain.Account, error) {
	query := `
		UPDATE user_account
		SET email = COALESCE($2, email),
		    first_name = COALESCE($3, first_name),
		    last_name = COALESCE($4, last_name),
		    bio = COALESCE($5, bio),
		    avatar_url = COALESCE($6, avatar_url),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns

	var account domain.Account
	row := r.db.QueryRowxContext(ctx, query, id, update.Email, update.FirstName, update.LastName, update.Bio, update.AvatarURL)
	if err := row.StructScan(&account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error {
	const query = `
		UPDATE user_account
		SET password_hash = $2,
		    password_salt = $3,
		    updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, passwordHash, passwordSalt)
	return err
}

func (r *AccountRepository) PublicProfile(ctx context.Context, username string, viewer *uuid.UUID) (*domain.PublicProfile, error) {
	query := `
		SELECT ` + accountColumns + `,
			(SELECT COUNT(*) FROM travel_post p WHERE p.user_id = user_account.id AND p.is_public) AS posts_count,
			EXISTS (
				SELECT 1 FROM user_follow f
				WHERE f.follower_id = $2 AND f.following_id = user_account.id
			) AS is_following
		FROM user_account
		WHERE username = $1
	`
	var profile domain.PublicProfile
	if err := r.db.GetContext(ctx, &profile, query, username, viewer); err != nil {
		return nil, err
	}
	return &profile, nil
}

var _ ports.AccountRepository = (*AccountRepository)(nil)
