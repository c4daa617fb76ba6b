package domain

import (
	"time"

	"github.com/google/uuid"
)

type RelationKind string

const (
	RelationLike   RelationKind = "like"
	RelationFollow RelationKind = "follow"
)

// Relation is an (actor, target) pair whose presence is guarded by a unique
// index: post_like(user_id, post_id) or user_follow(follower_id, following_id).
type Relation struct {
	Kind     RelationKind
	ActorID  uuid.UUID
	TargetID uuid.UUID
}

func LikeOf(userID, postID uuid.UUID) Relation {
	return Relation{Kind: RelationLike, ActorID: userID, TargetID: postID}
}

func FollowOf(followerID, followingID uuid.UUID) Relation {
	return Relation{Kind: RelationFollow, ActorID: followerID, TargetID: followingID}
}

// Counters lists the counters moved in lockstep with the relation row.
func (r Relation) Counters() []CounterRef {
	switch r.Kind {
	case RelationLike:
		return []CounterRef{{Counter: CounterPostLikes, EntityID: r.TargetID}}
	case RelationFollow:
		return []CounterRef{
			{Counter: CounterAccountFollowing, EntityID: r.ActorID},
			{Counter: CounterAccountFollowers, EntityID: r.TargetID},
		}
	default:
		return nil
	}
}

type ToggleResult struct {
	Relation Relation
	Present  bool
	Counts   map[Counter]int64
}

func (r ToggleResult) Count(counter Counter) int64 {
	return Floor(r.Counts[counter])
}

type Comment struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	PostID     uuid.UUID  `db:"post_id" json:"-"`
	UserID     uuid.UUID  `db:"user_id" json:"-"`
	ParentID   *uuid.UUID `db:"parent_id" json:"parent_id,omitempty"`
	Content    string     `db:"content" json:"content"`
	LikesCount int64      `db:"likes_count" json:"likes_count"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`

	Author  PublicProfile `db:"author" json:"user"`
	Replies []Comment     `db:"-" json:"replies"`
}

type CommentCreate struct {
	PostID   uuid.UUID
	UserID   uuid.UUID
	ParentID *uuid.UUID
	Content  string
}

type SharePlatform string

const (
	ShareNative    SharePlatform = "native"
	ShareInstagram SharePlatform = "instagram"
	ShareTwitter   SharePlatform = "twitter"
	ShareFacebook  SharePlatform = "facebook"
	ShareWhatsApp  SharePlatform = "whatsapp"
	ShareTelegram  SharePlatform = "telegram"
	ShareCopyLink  SharePlatform = "copy_link"
)

func (p SharePlatform) Valid() bool {
	switch p {
	case ShareNative, ShareInstagram, ShareTwitter, ShareFacebook, ShareWhatsApp, ShareTelegram, ShareCopyLink:
		return true
	}
	return false
}

type Share struct {
	ID        uuid.UUID     `db:"id" json:"id"`
	PostID    uuid.UUID     `db:"post_id" json:"post_id"`
	UserID    uuid.UUID     `db:"user_id" json:"user_id"`
	Platform  SharePlatform `db:"platform" json:"platform"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// PostView is one row of the append-only view log.
type PostView struct {
	PostID          uuid.UUID
	UserID          *uuid.UUID
	IPAddress       *string
	UserAgent       string
	DurationSeconds *int
}
