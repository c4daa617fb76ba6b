package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/media"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
)

const (
	MaxDescriptionLength = 500
	detailCommentCount   = 3
)

type PostServiceConfig struct {
	VideoBucket       string
	VideoMaxBytes     int64
	ImageBucket       string
	ThumbnailMaxBytes int64
	Thumbnailer       media.Thumbnailer
	Limits            PageLimits
}

type VideoUpload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type PostCreateInput struct {
	DestinationID   uuid.UUID
	Description     string
	MusicName       string
	MusicArtist     string
	Featured3D      bool
	IsPublic        *bool
	TagsInput       string
	DurationSeconds *int
	Video           VideoUpload
	Thumbnail       *media.Upload
}

// ViewContext describes the client recording a post view.
type ViewContext struct {
	IPAddress       string
	UserAgent       string
	DurationSeconds *int
}

type PostService struct {
	posts        ports.PostRepository
	comments     ports.CommentRepository
	destinations ports.DestinationRepository
	ledger       ports.Ledger
	storage      ports.ObjectStorage
	feed         *FeedService
	thumbnails   imageUploader
	logger       *slog.Logger

	videoBucket   string
	videoMaxBytes int64
	limits        PageLimits
}

func NewPostService(
	posts ports.PostRepository,
	comments ports.CommentRepository,
	destinations ports.DestinationRepository,
	ledger ports.Ledger,
	storage ports.ObjectStorage,
	feed *FeedService,
	logger *slog.Logger,
	cfg PostServiceConfig,
) *PostService {
	return &PostService{
		posts:        posts,
		comments:     comments,
		destinations: destinations,
		ledger:       ledger,
		storage:      storage,
		feed:         feed,
		thumbnails: imageUploader{
			storage:     storage,
			thumbnailer: cfg.Thumbnailer,
			bucket:      cfg.ImageBucket,
			maxBytes:    cfg.ThumbnailMaxBytes,
		},
		logger:        logger,
		videoBucket:   cfg.VideoBucket,
		videoMaxBytes: cfg.VideoMaxBytes,
		limits:        cfg.Limits,
	}
}

func (s *PostService) Create(ctx context.Context, userID uuid.UUID, input PostCreateInput) (*domain.Post, error) {
	description := strings.TrimSpace(input.Description)
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return nil, fmt.Errorf("%w: description must be at most %d characters", ErrValidation, MaxDescriptionLength)
	}
	if input.DurationSeconds != nil && *input.DurationSeconds < 0 {
		return nil, fmt.Errorf("%w: duration must not be negative", ErrValidation)
	}
	if input.Video.Reader == nil || input.Video.Size <= 0 {
		return nil, fmt.Errorf("%w: video is required", ErrValidation)
	}
	if s.videoMaxBytes > 0 && input.Video.Size > s.videoMaxBytes {
		return nil, fmt.Errorf("%w: video exceeds size limit (%d bytes)", ErrValidation, s.videoMaxBytes)
	}
	contentType, ext, err := media.VideoContentType(input.Video.ContentType, input.Video.FileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if _, err := s.destinations.FindByID(ctx, input.DestinationID); err != nil {
		if isNotFound(err) {
			return nil, ErrDestinationNotFound
		}
		return nil, err
	}
	tagNames := domain.ParseTagInput(input.TagsInput)
	slices.Sort(tagNames)

	prefix := "posts/" + userID.String()
	videoName := objectName(prefix, ext)
	videoURL, err := s.storage.Upload(ctx, s.videoBucket, videoName, contentType, input.Video.Reader, input.Video.Size)
	if err != nil {
		return nil, err
	}
	uploaded := []*storedObject{{bucket: s.videoBucket, name: videoName, url: videoURL}}

	var thumbnailURL *string
	if input.Thumbnail != nil {
		thumb, err := s.thumbnails.upload(ctx, prefix, *input.Thumbnail)
		if err != nil {
			removeObjects(ctx, s.storage, uploaded...)
			return nil, err
		}
		uploaded = append(uploaded, thumb)
		thumbnailURL = &thumb.url
	}

	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}
	sizeMB := media.SizeMB(input.Video.Size)

	// Create and Delete lock counter rows in the same order: the destination,
	// then tags by name.
	var created *domain.Post
	err = s.ledger.WithinTx(ctx, func(tx ports.LedgerTx) error {
		post, err := tx.InsertPost(ctx, domain.PostCreate{
			UserID:          userID,
			DestinationID:   input.DestinationID,
			VideoURL:        videoURL,
			ThumbnailURL:    thumbnailURL,
			Description:     description,
			MusicName:       strings.TrimSpace(input.MusicName),
			MusicArtist:     strings.TrimSpace(input.MusicArtist),
			Featured3D:      input.Featured3D,
			IsPublic:        isPublic,
			DurationSeconds: input.DurationSeconds,
			FileSizeMB:      &sizeMB,
		})
		if err != nil {
			return err
		}
		destinationPosts := domain.CounterRef{Counter: domain.CounterDestinationPosts, EntityID: input.DestinationID}
		if _, err := tx.Adjust(ctx, destinationPosts, 1); err != nil {
			return err
		}

		tags, err := tx.UpsertTags(ctx, tagNames)
		if err != nil {
			return err
		}
		slices.SortFunc(tags, func(a, b domain.Tag) int { return strings.Compare(a.Name, b.Name) })
		tagIDs := make([]uuid.UUID, 0, len(tags))
		for _, tag := range tags {
			tagIDs = append(tagIDs, tag.ID)
		}
		if err := tx.LinkTags(ctx, post.ID, tagIDs); err != nil {
			return err
		}
		for _, id := range tagIDs {
			if _, err := tx.Adjust(ctx, domain.CounterRef{Counter: domain.CounterTagPosts, EntityID: id}, 1); err != nil {
				return err
			}
		}
		created = post
		return nil
	})
	if err != nil {
		removeObjects(ctx, s.storage, uploaded...)
		switch {
		case isForeignKeyViolation(err):
			return nil, ErrDestinationNotFound
		case isTxConflict(err):
			return nil, ErrToggleConflict
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "post created",
		slog.String("post_id", created.ID.String()),
		slog.String("user_id", userID.String()),
		slog.Int("tags", len(tagNames)),
	)
	return s.load(ctx, created.ID, &userID)
}

// Get returns a post detail and records one view of it.
func (s *PostService) Get(ctx context.Context, id uuid.UUID, viewer *uuid.UUID, view ViewContext) (*domain.Post, error) {
	post, err := s.visibleTo(ctx, id, viewer)
	if err != nil {
		return nil, err
	}

	record := domain.PostView{
		PostID:          post.ID,
		UserID:          viewer,
		UserAgent:       view.UserAgent,
		DurationSeconds: view.DurationSeconds,
	}
	if ip := net.ParseIP(strings.TrimSpace(view.IPAddress)); ip != nil {
		addr := ip.String()
		record.IPAddress = &addr
	}

	err = s.ledger.WithinTx(ctx, func(tx ports.LedgerTx) error {
		if err := tx.InsertView(ctx, record); err != nil {
			return err
		}
		views, err := tx.Adjust(ctx, domain.CounterRef{Counter: domain.CounterPostViews, EntityID: post.ID}, 1)
		if err != nil {
			return err
		}
		if _, err := tx.Adjust(ctx, domain.CounterRef{Counter: domain.CounterAccountTotalViews, EntityID: post.UserID}, 1); err != nil {
			return err
		}
		post.ViewsCount = views
		return nil
	})
	if err != nil {
		if isNotFound(err) || isForeignKeyViolation(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if err := s.decorateDetail(ctx, post, viewer); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Update(ctx context.Context, id, userID uuid.UUID, update domain.PostUpdate) (*domain.Post, error) {
	post, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if update.Description != nil {
		description := strings.TrimSpace(*update.Description)
		if utf8.RuneCountInString(description) > MaxDescriptionLength {
			return nil, fmt.Errorf("%w: description must be at most %d characters", ErrValidation, MaxDescriptionLength)
		}
		update.Description = &description
	}
	if !update.Empty() {
		if err := s.posts.Update(ctx, post.ID, update); err != nil {
			return nil, err
		}
	}
	return s.load(ctx, post.ID, &userID)
}

func (s *PostService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	post, err := s.owned(ctx, id, userID)
	if err != nil {
		return err
	}

	err = s.ledger.WithinTx(ctx, func(tx ports.LedgerTx) error {
		destinationPosts := domain.CounterRef{Counter: domain.CounterDestinationPosts, EntityID: post.DestinationID}
		if _, err := tx.Adjust(ctx, destinationPosts, -1); err != nil {
			return err
		}
		tagIDs, err := tx.TagIDsForPost(ctx, post.ID)
		if err != nil {
			return err
		}
		for _, tagID := range tagIDs {
			if _, err := tx.Adjust(ctx, domain.CounterRef{Counter: domain.CounterTagPosts, EntityID: tagID}, -1); err != nil {
				return err
			}
		}
		return tx.DeletePost(ctx, post.ID)
	})
	if err != nil {
		switch {
		case isNotFound(err):
			return ErrPostNotFound
		case isTxConflict(err):
			return ErrToggleConflict
		}
		return err
	}
	s.logger.InfoContext(ctx, "post deleted",
		slog.String("post_id", post.ID.String()),
		slog.String("user_id", userID.String()),
	)
	return nil
}

// List serves GET /posts: list filters combined with an optional feed mode,
// paged by page number.
func (s *PostService) List(ctx context.Context, viewer *uuid.UUID, filter domain.PostListFilter) (*domain.PageResult[domain.Post], error) {
	page := s.limits.normalize(filter.Page)

	query := domain.PostQuery{Sort: filter.Sort}
	if filter.Mode != "" && s.feed != nil {
		modeQuery, mode, err := s.feed.modeQuery(ctx, filter.Mode, viewer)
		if err != nil {
			return nil, err
		}
		query = modeQuery
		if mode != domain.FeedTrending && filter.Sort != "" {
			query.Sort = filter.Sort
		}
	}
	query.AuthorUsername = filter.AuthorUsername
	query.DestinationID = filter.DestinationID
	query.Country = filter.Country
	query.Tags = filter.Tags
	query.Search = filter.Search
	if filter.Featured3D {
		query.Only3D = true
	}

	total, err := s.posts.Count(ctx, query)
	if err != nil {
		return nil, err
	}
	query.Limit = page.Size
	query.Offset = page.Offset()
	posts, err := s.posts.List(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := decoratePosts(ctx, s.posts, posts, viewer); err != nil {
		return nil, err
	}
	return &domain.PageResult[domain.Post]{
		Items:    posts,
		Total:    total,
		Page:     page.Number,
		PageSize: page.Size,
	}, nil
}

func (s *PostService) load(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*domain.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if err := s.decorateDetail(ctx, post, viewer); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) decorateDetail(ctx context.Context, post *domain.Post, viewer *uuid.UUID) error {
	single := []domain.Post{*post}
	if err := decoratePosts(ctx, s.posts, single, viewer); err != nil {
		return err
	}
	*post = single[0]

	comments, err := s.comments.ListTopLevel(ctx, post.ID, detailCommentCount, 0)
	if err != nil {
		return err
	}
	if err := attachReplies(ctx, s.comments, comments); err != nil {
		return err
	}
	post.Comments = comments
	return nil
}

// visibleTo hides private posts from everyone but their author.
func (s *PostService) visibleTo(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*domain.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if !post.IsPublic && (viewer == nil || *viewer != post.UserID) {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *PostService) owned(ctx context.Context, id, userID uuid.UUID) (*domain.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.UserID != userID {
		return nil, ErrForbidden
	}
	return post, nil
}
