package postgres

import (
	"context"
	"crypto/sha256"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
)

// SessionRepository stores issued tokens by SHA-256 digest; the bearer token
// itself never reaches the database.
type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepo(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func tokenDigest(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}

func (r *SessionRepository) CreateSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*domain.Session, error) {
	const query = `
		INSERT INTO user_session (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, created_at, expires_at, is_active
	`
	var session domain.Session
	if err := r.db.GetContext(ctx, &session, query, userID, tokenDigest(token), expiresAt); err != nil {
		return nil, err
	}
	session.Token = token
	return &session, nil
}

// DeactivateSession is idempotent; revoking an unknown or already revoked
// token is not an error.
func (r *SessionRepository) DeactivateSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE user_session SET is_active = false, expires_at = LEAST(expires_at, NOW())
		WHERE token_hash = $1 AND is_active
	`, tokenDigest(token))
	return err
}

func (r *SessionRepository) FindActiveSession(ctx context.Context, token string) (*domain.Session, error) {
	var session domain.Session
	err := r.db.GetContext(ctx, &session, `
		SELECT id, user_id, created_at, expires_at, is_active
		FROM user_session
		WHERE token_hash = $1 AND is_active AND expires_at > NOW()
	`, tokenDigest(token))
	if err != nil {
		return nil, err
	}
	session.Token = token
	return &session, nil
}

var _ ports.SessionRepository = (*SessionRepository)(nil)
