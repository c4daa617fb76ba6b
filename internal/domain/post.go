package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID              uuid.UUID `db:"id" json:"id"`
	UserID          uuid.UUID `db:"user_id" json:"-"`
	DestinationID   uuid.UUID `db:"destination_id" json:"-"`
	VideoURL        string    `db:"video_url" json:"video"`
	ThumbnailURL    *string   `db:"thumbnail_url" json:"thumbnail,omitempty"`
	Description     string    `db:"description" json:"description"`
	MusicName       string    `db:"music_name" json:"music_name"`
	MusicArtist     string    `db:"music_artist" json:"music_artist"`
	Featured3D      bool      `db:"featured_3d" json:"featured_3d"`
	IsFeatured      bool      `db:"is_featured" json:"is_featured"`
	IsPublic        bool      `db:"is_public" json:"is_public"`
	LikesCount      int64     `db:"likes_count" json:"likes_count"`
	CommentsCount   int64     `db:"comments_count" json:"comments_count"`
	SharesCount     int64     `db:"shares_count" json:"shares_count"`
	ViewsCount      int64     `db:"views_count" json:"views_count"`
	DurationSeconds *int      `db:"duration_seconds" json:"duration_seconds,omitempty"`
	FileSizeMB      *float64  `db:"file_size_mb" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"-"`

	Author      PublicProfile `db:"author" json:"user"`
	Destination Destination   `db:"destination" json:"destination"`

	Tags     []string  `db:"-" json:"tags"`
	IsLiked  bool      `db:"-" json:"is_liked"`
	Comments []Comment `db:"-" json:"comments,omitempty"`
}

// EngagementScore ranks posts in trending mode.
func (p *Post) EngagementScore() int64 {
	return EngagementScore(p.LikesCount, p.CommentsCount, p.SharesCount)
}

func EngagementScore(likes, comments, shares int64) int64 {
	return Floor(likes) + 2*Floor(comments) + 3*Floor(shares)
}

// FloorCounters clamps every denormalized counter at zero for display.
func (p *Post) FloorCounters() {
	p.LikesCount = Floor(p.LikesCount)
	p.CommentsCount = Floor(p.CommentsCount)
	p.SharesCount = Floor(p.SharesCount)
	p.ViewsCount = Floor(p.ViewsCount)
}

type PostCreate struct {
	UserID          uuid.UUID
	DestinationID   uuid.UUID
	VideoURL        string
	ThumbnailURL    *string
	Description     string
	MusicName       string
	MusicArtist     string
	Featured3D      bool
	IsFeatured      bool
	IsPublic        bool
	DurationSeconds *int
	FileSizeMB      *float64
}

type PostUpdate struct {
	Description *string
	MusicName   *string
	MusicArtist *string
	Featured3D  *bool
	IsPublic    *bool
}

func (u PostUpdate) Empty() bool {
	return u.Description == nil && u.MusicName == nil && u.MusicArtist == nil && u.Featured3D == nil && u.IsPublic == nil
}

// TimeAgo renders the coarse relative age shown next to a post.
func TimeAgo(now, createdAt time.Time) string {
	diff := now.Sub(createdAt)
	if diff < 0 {
		diff = 0
	}
	switch {
	case diff >= 24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff/(24*time.Hour)))
	case diff > time.Hour:
		return fmt.Sprintf("%dh ago", int(diff/time.Hour))
	case diff > time.Minute:
		return fmt.Sprintf("%dm ago", int(diff/time.Minute))
	default:
		return "Just now"
	}
}
