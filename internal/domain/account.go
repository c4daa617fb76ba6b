package domain

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Bio            string    `db:"bio" json:"bio"`
	AvatarURL      *string   `db:"avatar_url" json:"avatar,omitempty"`
	Verified       bool      `db:"verified" json:"verified"`
	PasswordHash   []byte    `db:"password_hash" json:"-"`
	PasswordSalt   []byte    `db:"password_salt" json:"-"`
	FollowersCount int64     `db:"followers_count" json:"followers_count"`
	FollowingCount int64     `db:"following_count" json:"following_count"`
	TotalLikes     int64     `db:"total_likes" json:"total_likes"`
	TotalViews     int64     `db:"total_views" json:"total_views"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName falls back to the username when no first/last name is set.
func (a *Account) DisplayName() string {
	switch {
	case a.FirstName != "" && a.LastName != "":
		return a.FirstName + " " + a.LastName
	case a.FirstName != "":
		return a.FirstName
	case a.LastName != "":
		return a.LastName
	default:
		return a.Username
	}
}

type AccountCreate struct {
	Username     string
	Email        string
	FirstName    string
	LastName     string
	Bio          string
	PasswordHash []byte
	PasswordSalt []byte
}

type AccountUpdate struct {
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	AvatarURL *string
}

// PublicProfile is an account as seen by another (possibly anonymous) viewer.
type PublicProfile struct {
	Account
	PostsCount  int64 `db:"posts_count" json:"posts_count"`
	IsFollowing bool  `db:"is_following" json:"is_following"`
}

type Session struct {
	ID        int64     `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Token     string    `db:"-"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
	IsActive  bool      `db:"is_active"`
}
