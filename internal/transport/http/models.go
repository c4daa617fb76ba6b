package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
)

// ErrorResponse represents a generic error payload.
type ErrorResponse struct {
	Error string `json:"error" example:"post not found"`
}

// RegisterRequest carries the registration fields.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=30" example:"wanderer"`
	Email     string `json:"email" validate:"required,email" example:"wanderer@example.com"`
	Password  string `json:"password" validate:"required,min=8" example:"Wanderlust!42"`
	FirstName string `json:"first_name" validate:"max=150" example:"Ana"`
	LastName  string `json:"last_name" validate:"max=150" example:"Lima"`
	Bio       string `json:"bio" validate:"max=500" example:"Chasing sunsets"`
}

// LoginRequest carries username login fields.
type LoginRequest struct {
	Username string `json:"username" validate:"required" example:"wanderer"`
	Password string `json:"password" validate:"required" example:"Wanderlust!42"`
}

// GoogleLoginRequest carries the Google ID token for login.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required" example:"eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

type PostUpdateRequest struct {
	Description *string `json:"description" validate:"omitempty,max=500"`
	MusicName   *string `json:"music_name" validate:"omitempty,max=200"`
	MusicArtist *string `json:"music_artist" validate:"omitempty,max=200"`
	Featured3D  *bool   `json:"featured_3d"`
	IsPublic    *bool   `json:"is_public"`
}

type ShareRequest struct {
	Platform string `json:"platform" validate:"omitempty,oneof=native instagram twitter facebook whatsapp telegram copy_link" example:"instagram"`
}

// CommentRequest creates a top-level comment or, with parent set, a reply.
type CommentRequest struct {
	Content string     `json:"content" validate:"required,max=500" example:"Adding this to my list!"`
	Parent  *uuid.UUID `json:"parent"`
}

type PreferenceRequest struct {
	Show3DContent         *bool        `json:"show_3d_content"`
	AutoPlayVideos        *bool        `json:"auto_play_videos"`
	ShowTrending          *bool        `json:"show_trending"`
	PreferredDestinations *[]uuid.UUID `json:"preferred_destinations"`
	FavoriteTags          *[]uuid.UUID `json:"favorite_tags"`
}

// UserResponse is the account as seen by its owner.
type UserResponse struct {
	ID             uuid.UUID `json:"id" example:"9fd13fd2-63c5-4f29-a210-4a1a8e285f74"`
	Username       string    `json:"username" example:"wanderer"`
	Email          string    `json:"email" example:"wanderer@example.com"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Bio            string    `json:"bio"`
	Avatar         *string   `json:"avatar"`
	Verified       bool      `json:"verified"`
	FollowersCount int64     `json:"followers_count"`
	FollowingCount int64     `json:"following_count"`
	TotalLikes     int64     `json:"total_likes"`
	TotalViews     int64     `json:"total_views"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProfileResponse is an account as seen by other viewers. It never carries
// the email address.
type ProfileResponse struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Bio            string    `json:"bio"`
	Avatar         *string   `json:"avatar"`
	Verified       bool      `json:"verified"`
	FollowersCount int64     `json:"followers_count"`
	FollowingCount int64     `json:"following_count"`
	TotalLikes     int64     `json:"total_likes"`
	IsFollowing    bool      `json:"is_following"`
	PostsCount     int64     `json:"posts_count"`
}

// AuthTokenResponse is returned by endpoints that issue tokens.
type AuthTokenResponse struct {
	Token     string       `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type DestinationResponse struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name" example:"Bali"`
	Country       string           `json:"country" example:"Indonesia"`
	City          string           `json:"city"`
	Latitude      float64          `json:"latitude"`
	Longitude     float64          `json:"longitude"`
	Description   string           `json:"description"`
	FeaturedImage *string          `json:"featured_image"`
	Has3DModel    bool             `json:"has_3d_model"`
	ModelType     domain.ModelType `json:"model_type" example:"island"`
	PostsCount    int64            `json:"posts_count"`
	VisitsCount   int64            `json:"visits_count"`
	IsTrending    bool             `json:"is_trending"`
	CreatedAt     time.Time        `json:"created_at"`
}

type TrendingResponse struct {
	Destination    DestinationResponse `json:"destination"`
	Score          float64             `json:"score"`
	PostsLast24h   int64               `json:"posts_last_24h"`
	PostsLastWeek  int64               `json:"posts_last_week"`
	EngagementRate float64             `json:"engagement_rate"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

type CommentResponse struct {
	ID         uuid.UUID         `json:"id"`
	User       ProfileResponse   `json:"user"`
	Content    string            `json:"content"`
	LikesCount int64             `json:"likes_count"`
	IsLiked    bool              `json:"is_liked"`
	Replies    []CommentResponse `json:"replies"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

type PostResponse struct {
	ID              uuid.UUID           `json:"id"`
	User            ProfileResponse     `json:"user"`
	Destination     DestinationResponse `json:"destination"`
	Video           string              `json:"video"`
	Thumbnail       *string             `json:"thumbnail"`
	Description     string              `json:"description"`
	MusicName       string              `json:"music_name"`
	MusicArtist     string              `json:"music_artist"`
	Featured3D      bool                `json:"featured_3d"`
	IsFeatured      bool                `json:"is_featured"`
	IsPublic        bool                `json:"is_public"`
	LikesCount      int64               `json:"likes_count"`
	CommentsCount   int64               `json:"comments_count"`
	SharesCount     int64               `json:"shares_count"`
	ViewsCount      int64               `json:"views_count"`
	DurationSeconds *int                `json:"duration_seconds"`
	Tags            []string            `json:"tags" example:"#bali,#beach"`
	IsLiked         bool                `json:"is_liked"`
	Comments        []CommentResponse   `json:"comments,omitempty"`
	TimeAgo         string              `json:"time_ago" example:"3h ago"`
	CreatedAt       time.Time           `json:"created_at"`
}

type TagResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name" example:"bali"`
	PostsCount int64     `json:"posts_count"`
}

type PreferenceResponse struct {
	PreferredDestinations []uuid.UUID `json:"preferred_destinations"`
	FavoriteTags          []uuid.UUID `json:"favorite_tags"`
	Show3DContent         bool        `json:"show_3d_content"`
	AutoPlayVideos        bool        `json:"auto_play_videos"`
	ShowTrending          bool        `json:"show_trending"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

type FeedResponse struct {
	Results []PostResponse `json:"results"`
	HasNext bool           `json:"has_next"`
	Feed    string         `json:"feed" example:"latest"`
}

type SearchResponse struct {
	Users        []ProfileResponse     `json:"users"`
	Destinations []DestinationResponse `json:"destinations"`
	Posts        []PostResponse        `json:"posts"`
	Tags         []TagResponse         `json:"tags"`
}

type LikeResponse struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

type FollowResponse struct {
	Following      bool  `json:"following"`
	FollowersCount int64 `json:"followers_count"`
}

type ShareResponse struct {
	Shared      bool                 `json:"shared"`
	Platform    domain.SharePlatform `json:"platform"`
	SharesCount int64                `json:"shares_count"`
}

// SuccessResponse denotes a simple success flag.
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

func userResponse(a *domain.Account) UserResponse {
	return UserResponse{
		ID:             a.ID,
		Username:       a.Username,
		Email:          a.Email,
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		Bio:            a.Bio,
		Avatar:         a.AvatarURL,
		Verified:       a.Verified,
		FollowersCount: domain.Floor(a.FollowersCount),
		FollowingCount: domain.Floor(a.FollowingCount),
		TotalLikes:     domain.Floor(a.TotalLikes),
		TotalViews:     domain.Floor(a.TotalViews),
		CreatedAt:      a.CreatedAt,
	}
}

func profileResponse(p *domain.PublicProfile) ProfileResponse {
	return ProfileResponse{
		ID:             p.ID,
		Username:       p.Username,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Bio:            p.Bio,
		Avatar:         p.AvatarURL,
		Verified:       p.Verified,
		FollowersCount: domain.Floor(p.FollowersCount),
		FollowingCount: domain.Floor(p.FollowingCount),
		TotalLikes:     domain.Floor(p.TotalLikes),
		IsFollowing:    p.IsFollowing,
		PostsCount:     domain.Floor(p.PostsCount),
	}
}

func destinationResponse(d *domain.Destination) DestinationResponse {
	return DestinationResponse{
		ID:            d.ID,
		Name:          d.Name,
		Country:       d.Country,
		City:          d.City,
		Latitude:      d.Latitude,
		Longitude:     d.Longitude,
		Description:   d.Description,
		FeaturedImage: d.FeaturedImageURL,
		Has3DModel:    d.Has3DModel,
		ModelType:     d.ModelType,
		PostsCount:    domain.Floor(d.PostsCount),
		VisitsCount:   domain.Floor(d.VisitsCount),
		IsTrending:    d.IsTrending,
		CreatedAt:     d.CreatedAt,
	}
}

func destinationResponses(items []domain.Destination) []DestinationResponse {
	out := make([]DestinationResponse, 0, len(items))
	for i := range items {
		out = append(out, destinationResponse(&items[i]))
	}
	return out
}

func trendingResponse(t *domain.TrendingDestination) TrendingResponse {
	return TrendingResponse{
		Destination:    destinationResponse(&t.Destination),
		Score:          t.Score,
		PostsLast24h:   t.PostsLast24h,
		PostsLastWeek:  t.PostsLastWeek,
		EngagementRate: t.EngagementRate,
		UpdatedAt:      t.UpdatedAt,
	}
}

func commentResponse(c *domain.Comment) CommentResponse {
	replies := make([]CommentResponse, 0, len(c.Replies))
	for i := range c.Replies {
		replies = append(replies, commentResponse(&c.Replies[i]))
	}
	return CommentResponse{
		ID:         c.ID,
		User:       profileResponse(&c.Author),
		Content:    c.Content,
		LikesCount: domain.Floor(c.LikesCount),
		Replies:    replies,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func commentResponses(items []domain.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(items))
	for i := range items {
		out = append(out, commentResponse(&items[i]))
	}
	return out
}

func postResponse(p *domain.Post, now time.Time) PostResponse {
	tags := make([]string, 0, len(p.Tags))
	for _, name := range p.Tags {
		tags = append(tags, domain.FormatTag(name))
	}
	resp := PostResponse{
		ID:              p.ID,
		User:            profileResponse(&p.Author),
		Destination:     destinationResponse(&p.Destination),
		Video:           p.VideoURL,
		Thumbnail:       p.ThumbnailURL,
		Description:     p.Description,
		MusicName:       p.MusicName,
		MusicArtist:     p.MusicArtist,
		Featured3D:      p.Featured3D,
		IsFeatured:      p.IsFeatured,
		IsPublic:        p.IsPublic,
		LikesCount:      domain.Floor(p.LikesCount),
		CommentsCount:   domain.Floor(p.CommentsCount),
		SharesCount:     domain.Floor(p.SharesCount),
		ViewsCount:      domain.Floor(p.ViewsCount),
		DurationSeconds: p.DurationSeconds,
		Tags:            tags,
		IsLiked:         p.IsLiked,
		TimeAgo:         domain.TimeAgo(now, p.CreatedAt),
		CreatedAt:       p.CreatedAt,
	}
	if p.Comments != nil {
		resp.Comments = commentResponses(p.Comments)
	}
	return resp
}

func postResponses(items []domain.Post, now time.Time) []PostResponse {
	out := make([]PostResponse, 0, len(items))
	for i := range items {
		out = append(out, postResponse(&items[i], now))
	}
	return out
}

func tagResponses(items []domain.Tag) []TagResponse {
	out := make([]TagResponse, 0, len(items))
	for _, t := range items {
		out = append(out, TagResponse{ID: t.ID, Name: t.Name, PostsCount: domain.Floor(t.PostsCount)})
	}
	return out
}

func preferenceResponse(p *domain.UserPreference) PreferenceResponse {
	resp := PreferenceResponse{
		PreferredDestinations: p.PreferredDestinations,
		FavoriteTags:          p.FavoriteTags,
		Show3DContent:         p.Show3DContent,
		AutoPlayVideos:        p.AutoPlayVideos,
		ShowTrending:          p.ShowTrending,
		UpdatedAt:             p.UpdatedAt,
	}
	if resp.PreferredDestinations == nil {
		resp.PreferredDestinations = []uuid.UUID{}
	}
	if resp.FavoriteTags == nil {
		resp.FavoriteTags = []uuid.UUID{}
	}
	return resp
}
