package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type FeedMode string

const (
	FeedLatest    FeedMode = "latest"
	FeedTrending  FeedMode = "trending"
	FeedFollowing FeedMode = "following"
	Feed3D        FeedMode = "3d"
)

// TrendingWindow bounds the age of posts eligible for the trending feed.
const TrendingWindow = 24 * time.Hour

// ParseFeedMode maps the ?feed= value; anything unknown is the latest feed.
func ParseFeedMode(raw string) FeedMode {
	switch FeedMode(strings.ToLower(strings.TrimSpace(raw))) {
	case FeedTrending:
		return FeedTrending
	case FeedFollowing:
		return FeedFollowing
	case Feed3D:
		return Feed3D
	default:
		return FeedLatest
	}
}

type PostSort string

const (
	PostSortCreatedDesc PostSort = "-created_at"
	PostSortCreatedAsc  PostSort = "created_at"
	PostSortLikesDesc   PostSort = "-likes_count"
	PostSortLikesAsc    PostSort = "likes_count"
	PostSortViewsDesc   PostSort = "-views_count"
	PostSortViewsAsc    PostSort = "views_count"
	// PostSortEngagement is used by the trending feed only.
	PostSortEngagement PostSort = "engagement"
)

func ParsePostSort(raw string) (PostSort, bool) {
	switch s := PostSort(strings.TrimSpace(raw)); s {
	case PostSortCreatedDesc, PostSortCreatedAsc, PostSortLikesDesc,
		PostSortLikesAsc, PostSortViewsDesc, PostSortViewsAsc:
		return s, true
	case "":
		return PostSortCreatedDesc, true
	}
	return "", false
}

// PostQuery is the storage-level selection for feeds and post listings. Only
// public posts are ever returned.
type PostQuery struct {
	// CreatedAfter restricts to posts created at or after the instant.
	CreatedAfter *time.Time
	// FollowedBy restricts authors to the follow set of this account.
	FollowedBy *uuid.UUID
	Only3D     bool
	Exclude3D  bool

	AuthorUsername string
	DestinationID  *uuid.UUID
	Country        string
	Tags           []string
	Search         string

	Sort   PostSort
	Limit  int
	Offset int
}

type FeedRequest struct {
	ViewerID *uuid.UUID
	Mode     FeedMode
	Offset   int
	PageSize int
}

type FeedPage struct {
	Mode     FeedMode
	Posts    []Post
	HasNext  bool
	Offset   int
	PageSize int
}

// PostListFilter carries the /posts list query parameters.
type PostListFilter struct {
	Mode           FeedMode
	AuthorUsername string
	DestinationID  *uuid.UUID
	Country        string
	Tags           []string
	Search         string
	Featured3D     bool
	Sort           PostSort
	Page           Page
}
