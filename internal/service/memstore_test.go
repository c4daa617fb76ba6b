package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: constraint}
}

func foreignKeyViolation(constraint string) error {
	return &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: constraint}
}

func checkViolation(constraint string) error {
	return &pgconn.PgError{Code: "23514", ConstraintName: constraint}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// matchPosition mirrors NULLIF(strpos(lower(field), lower(q)), 0): misses sort last.
func matchPosition(field, q string) int {
	idx := strings.Index(strings.ToLower(field), strings.ToLower(q))
	if idx < 0 {
		return int(^uint(0) >> 1)
	}
	return idx
}

// memoryStore is a single in-memory database shared by every fake repository.
// WithinTx holds the lock for the whole callback and restores a snapshot when
// the callback fails, so it behaves like one serializable transaction.
type memoryStore struct {
	mu  sync.Mutex
	now time.Time
	seq int

	accounts     map[uuid.UUID]domain.Account
	sessions     map[string]domain.Session
	destinations map[uuid.UUID]domain.Destination
	posts        map[uuid.UUID]domain.Post
	relations    map[domain.Relation]struct{}
	tags         map[uuid.UUID]domain.Tag
	postTags     map[uuid.UUID][]uuid.UUID
	comments     map[uuid.UUID]domain.Comment
	shares       []domain.Share
	views        []domain.PostView
	prefs        map[uuid.UUID]domain.UserPreference
	trending     map[uuid.UUID]domain.TrendingDestination

	// staleRelationReads makes RemoveRelation miss committed rows, the way a
	// transaction racing a concurrent insert of the same pair would.
	staleRelationReads bool
	// adjusted records every counter Adjust touched, in call order.
	adjusted []domain.CounterRef
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		now:          testNow,
		accounts:     make(map[uuid.UUID]domain.Account),
		sessions:     make(map[string]domain.Session),
		destinations: make(map[uuid.UUID]domain.Destination),
		posts:        make(map[uuid.UUID]domain.Post),
		relations:    make(map[domain.Relation]struct{}),
		tags:         make(map[uuid.UUID]domain.Tag),
		postTags:     make(map[uuid.UUID][]uuid.UUID),
		comments:     make(map[uuid.UUID]domain.Comment),
		prefs:        make(map[uuid.UUID]domain.UserPreference),
		trending:     make(map[uuid.UUID]domain.TrendingDestination),
	}
}

func (s *memoryStore) tick() time.Time {
	s.seq++
	return s.now.Add(time.Duration(s.seq) * time.Millisecond)
}

// seeding helpers

func (s *memoryStore) seedAccount(username string) domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	account := domain.Account{
		ID:        uuid.New(),
		Username:  username,
		Email:     username + "@example.com",
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}
	s.accounts[account.ID] = account
	return account
}

func (s *memoryStore) seedDestination(name, country string, has3D bool) domain.Destination {
	s.mu.Lock()
	defer s.mu.Unlock()
	dest := domain.Destination{
		ID:         uuid.New(),
		Name:       name,
		Country:    country,
		Has3DModel: has3D,
		ModelType:  domain.ModelTypeCity,
		CreatedAt:  s.now,
		UpdatedAt:  s.now,
	}
	s.destinations[dest.ID] = dest
	return dest
}

type seedPostOptions struct {
	description string
	age         time.Duration
	featured3D  bool
	private     bool
	likes       int64
	comments    int64
	shares      int64
}

func (s *memoryStore) seedPost(author domain.Account, dest domain.Destination, opts seedPostOptions) domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	post := domain.Post{
		ID:            uuid.New(),
		UserID:        author.ID,
		DestinationID: dest.ID,
		VideoURL:      "http://objects.test/videos/" + uuid.NewString() + ".mp4",
		Description:   opts.description,
		Featured3D:    opts.featured3D,
		IsPublic:      !opts.private,
		LikesCount:    opts.likes,
		CommentsCount: opts.comments,
		SharesCount:   opts.shares,
		CreatedAt:     s.now.Add(-opts.age),
		UpdatedAt:     s.now.Add(-opts.age),
	}
	s.posts[post.ID] = post
	return post
}

func (s *memoryStore) takeAdjusted() []domain.CounterRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.adjusted
	s.adjusted = nil
	return out
}

func (s *memoryStore) account(id uuid.UUID) domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[id]
}

func (s *memoryStore) post(id uuid.UUID) (domain.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	return p, ok
}

func (s *memoryStore) destination(id uuid.UUID) domain.Destination {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destinations[id]
}

func (s *memoryStore) tagByName(name string) (domain.Tag, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tag := range s.tags {
		if tag.Name == name {
			return tag, true
		}
	}
	return domain.Tag{}, false
}

func (s *memoryStore) relationCount(kind domain.RelationKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for rel := range s.relations {
		if rel.Kind == kind {
			n++
		}
	}
	return n
}

func (s *memoryStore) viewCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

// joins

func (s *memoryStore) profileLocked(id uuid.UUID) domain.PublicProfile {
	return domain.PublicProfile{Account: s.accounts[id]}
}

func (s *memoryStore) joinPostLocked(p domain.Post) domain.Post {
	p.Author = s.profileLocked(p.UserID)
	p.Destination = s.destinations[p.DestinationID]
	return p
}

func (s *memoryStore) joinCommentLocked(c domain.Comment) domain.Comment {
	c.Author = s.profileLocked(c.UserID)
	return c
}

// transactions

type memorySnapshot struct {
	accounts     map[uuid.UUID]domain.Account
	destinations map[uuid.UUID]domain.Destination
	posts        map[uuid.UUID]domain.Post
	relations    map[domain.Relation]struct{}
	tags         map[uuid.UUID]domain.Tag
	postTags     map[uuid.UUID][]uuid.UUID
	comments     map[uuid.UUID]domain.Comment
	shares       []domain.Share
	views        []domain.PostView
}

func (s *memoryStore) snapshot() memorySnapshot {
	postTags := make(map[uuid.UUID][]uuid.UUID, len(s.postTags))
	for id, ids := range s.postTags {
		postTags[id] = slices.Clone(ids)
	}
	return memorySnapshot{
		accounts:     maps.Clone(s.accounts),
		destinations: maps.Clone(s.destinations),
		posts:        maps.Clone(s.posts),
		relations:    maps.Clone(s.relations),
		tags:         maps.Clone(s.tags),
		postTags:     postTags,
		comments:     maps.Clone(s.comments),
		shares:       slices.Clone(s.shares),
		views:        slices.Clone(s.views),
	}
}

func (s *memoryStore) restore(snap memorySnapshot) {
	s.accounts = snap.accounts
	s.destinations = snap.destinations
	s.posts = snap.posts
	s.relations = snap.relations
	s.tags = snap.tags
	s.postTags = snap.postTags
	s.comments = snap.comments
	s.shares = snap.shares
	s.views = snap.views
}

func (s *memoryStore) WithinTx(ctx context.Context, fn func(tx ports.LedgerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(memoryTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memoryTx struct {
	s *memoryStore
}

// counter resolves a counter to its field and a commit that writes the row back.
func (tx memoryTx) counter(ref domain.CounterRef) (*int64, func(), error) {
	s := tx.s
	switch ref.Counter {
	case domain.CounterPostLikes, domain.CounterPostComments, domain.CounterPostShares, domain.CounterPostViews:
		p, ok := s.posts[ref.EntityID]
		if !ok {
			return nil, nil, sql.ErrNoRows
		}
		fields := map[domain.Counter]*int64{
			domain.CounterPostLikes:    &p.LikesCount,
			domain.CounterPostComments: &p.CommentsCount,
			domain.CounterPostShares:   &p.SharesCount,
			domain.CounterPostViews:    &p.ViewsCount,
		}
		return fields[ref.Counter], func() { s.posts[ref.EntityID] = p }, nil
	case domain.CounterAccountFollowers, domain.CounterAccountFollowing, domain.CounterAccountTotalLikes, domain.CounterAccountTotalViews:
		a, ok := s.accounts[ref.EntityID]
		if !ok {
			return nil, nil, sql.ErrNoRows
		}
		fields := map[domain.Counter]*int64{
			domain.CounterAccountFollowers:  &a.FollowersCount,
			domain.CounterAccountFollowing:  &a.FollowingCount,
			domain.CounterAccountTotalLikes: &a.TotalLikes,
			domain.CounterAccountTotalViews: &a.TotalViews,
		}
		return fields[ref.Counter], func() { s.accounts[ref.EntityID] = a }, nil
	case domain.CounterDestinationPosts, domain.CounterDestinationVisits:
		d, ok := s.destinations[ref.EntityID]
		if !ok {
			return nil, nil, sql.ErrNoRows
		}
		field := &d.PostsCount
		if ref.Counter == domain.CounterDestinationVisits {
			field = &d.VisitsCount
		}
		return field, func() { s.destinations[ref.EntityID] = d }, nil
	case domain.CounterTagPosts:
		t, ok := s.tags[ref.EntityID]
		if !ok {
			return nil, nil, sql.ErrNoRows
		}
		return &t.PostsCount, func() { s.tags[ref.EntityID] = t }, nil
	}
	return nil, nil, fmt.Errorf("unknown counter %q", ref.Counter)
}

func (tx memoryTx) Adjust(ctx context.Context, ref domain.CounterRef, delta int64) (int64, error) {
	field, commit, err := tx.counter(ref)
	if err != nil {
		return 0, err
	}
	tx.s.adjusted = append(tx.s.adjusted, ref)
	if *field+delta < 0 {
		return 0, checkViolation(strings.ReplaceAll(string(ref.Counter), ".", "_") + "_check")
	}
	*field += delta
	commit()
	return *field, nil
}

func (tx memoryTx) Read(ctx context.Context, ref domain.CounterRef) (int64, error) {
	field, _, err := tx.counter(ref)
	if err != nil {
		return 0, err
	}
	return domain.Floor(*field), nil
}

func (tx memoryTx) RemoveRelation(ctx context.Context, rel domain.Relation) (bool, error) {
	if tx.s.staleRelationReads {
		return false, nil
	}
	if _, ok := tx.s.relations[rel]; !ok {
		return false, nil
	}
	delete(tx.s.relations, rel)
	return true, nil
}

func (tx memoryTx) AddRelation(ctx context.Context, rel domain.Relation) error {
	s := tx.s
	switch rel.Kind {
	case domain.RelationLike:
		if _, ok := s.posts[rel.TargetID]; !ok {
			return foreignKeyViolation("post_like_post_id_fkey")
		}
		if _, ok := s.relations[rel]; ok {
			return uniqueViolation("post_like_user_id_post_id_key")
		}
	case domain.RelationFollow:
		if _, ok := s.accounts[rel.TargetID]; !ok {
			return foreignKeyViolation("user_follow_following_id_fkey")
		}
		if _, ok := s.relations[rel]; ok {
			return uniqueViolation("user_follow_follower_id_following_id_key")
		}
	default:
		return fmt.Errorf("unknown relation %q", rel.Kind)
	}
	s.relations[rel] = struct{}{}
	return nil
}

func (tx memoryTx) InsertPost(ctx context.Context, input domain.PostCreate) (*domain.Post, error) {
	s := tx.s
	if _, ok := s.destinations[input.DestinationID]; !ok {
		return nil, foreignKeyViolation("travel_post_destination_id_fkey")
	}
	created := s.tick()
	post := domain.Post{
		ID:              uuid.New(),
		UserID:          input.UserID,
		DestinationID:   input.DestinationID,
		VideoURL:        input.VideoURL,
		ThumbnailURL:    input.ThumbnailURL,
		Description:     input.Description,
		MusicName:       input.MusicName,
		MusicArtist:     input.MusicArtist,
		Featured3D:      input.Featured3D,
		IsFeatured:      input.IsFeatured,
		IsPublic:        input.IsPublic,
		DurationSeconds: input.DurationSeconds,
		FileSizeMB:      input.FileSizeMB,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	s.posts[post.ID] = post
	joined := s.joinPostLocked(post)
	return &joined, nil
}

func (tx memoryTx) DeletePost(ctx context.Context, id uuid.UUID) error {
	s := tx.s
	if _, ok := s.posts[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.posts, id)
	delete(s.postTags, id)
	for rel := range s.relations {
		if rel.Kind == domain.RelationLike && rel.TargetID == id {
			delete(s.relations, rel)
		}
	}
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
	return nil
}

func (tx memoryTx) UpsertTags(ctx context.Context, names []string) ([]domain.Tag, error) {
	s := tx.s
	out := make([]domain.Tag, 0, len(names))
	for _, name := range names {
		var found *domain.Tag
		for _, tag := range s.tags {
			if tag.Name == name {
				found = &tag
				break
			}
		}
		if found == nil {
			tag := domain.Tag{ID: uuid.New(), Name: name, CreatedAt: s.tick()}
			s.tags[tag.ID] = tag
			found = &tag
		}
		out = append(out, *found)
	}
	return out, nil
}

func (tx memoryTx) LinkTags(ctx context.Context, postID uuid.UUID, tagIDs []uuid.UUID) error {
	s := tx.s
	if _, ok := s.posts[postID]; !ok {
		return foreignKeyViolation("post_tag_relation_post_id_fkey")
	}
	for _, id := range tagIDs {
		if !slices.Contains(s.postTags[postID], id) {
			s.postTags[postID] = append(s.postTags[postID], id)
		}
	}
	return nil
}

func (tx memoryTx) TagIDsForPost(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	ids := slices.Clone(tx.s.postTags[postID])
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return strings.Compare(tx.s.tags[a].Name, tx.s.tags[b].Name)
	})
	return ids, nil
}

func (tx memoryTx) InsertComment(ctx context.Context, input domain.CommentCreate) (*domain.Comment, error) {
	s := tx.s
	if _, ok := s.posts[input.PostID]; !ok {
		return nil, foreignKeyViolation("post_comment_post_id_fkey")
	}
	created := s.tick()
	comment := domain.Comment{
		ID:        uuid.New(),
		PostID:    input.PostID,
		UserID:    input.UserID,
		ParentID:  input.ParentID,
		Content:   input.Content,
		CreatedAt: created,
		UpdatedAt: created,
	}
	s.comments[comment.ID] = comment
	joined := s.joinCommentLocked(comment)
	return &joined, nil
}

func (tx memoryTx) InsertShare(ctx context.Context, postID, userID uuid.UUID, platform domain.SharePlatform) (*domain.Share, error) {
	s := tx.s
	if _, ok := s.posts[postID]; !ok {
		return nil, foreignKeyViolation("post_share_post_id_fkey")
	}
	share := domain.Share{ID: uuid.New(), PostID: postID, UserID: userID, Platform: platform, CreatedAt: s.tick()}
	s.shares = append(s.shares, share)
	return &share, nil
}

func (tx memoryTx) InsertView(ctx context.Context, view domain.PostView) error {
	if _, ok := tx.s.posts[view.PostID]; !ok {
		return foreignKeyViolation("post_view_post_id_fkey")
	}
	tx.s.views = append(tx.s.views, view)
	return nil
}

// accounts

type memoryAccounts struct{ s *memoryStore }

func (r memoryAccounts) Create(ctx context.Context, input domain.AccountCreate) (*domain.Account, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Username == input.Username {
			return nil, uniqueViolation("user_account_username_key")
		}
		if strings.EqualFold(a.Email, input.Email) {
			return nil, uniqueViolation("user_account_email_key")
		}
	}
	created := s.tick()
	account := domain.Account{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Bio:          input.Bio,
		PasswordHash: input.PasswordHash,
		PasswordSalt: input.PasswordSalt,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	s.accounts[account.ID] = account
	return &account, nil
}

func (r memoryAccounts) UpsertGoogle(ctx context.Context, email, username, firstName, lastName string, avatarURL *string) (*domain.Account, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			a.FirstName, a.LastName = firstName, lastName
			if avatarURL != nil {
				a.AvatarURL = avatarURL
			}
			a.Verified = true
			s.accounts[id] = a
			return &a, nil
		}
	}
	for _, a := range s.accounts {
		if a.Username == username {
			return nil, uniqueViolation("user_account_username_key")
		}
	}
	created := s.tick()
	account := domain.Account{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		AvatarURL: avatarURL,
		Verified:  true,
		CreatedAt: created,
		UpdatedAt: created,
	}
	s.accounts[account.ID] = account
	return &account, nil
}

func (r memoryAccounts) find(match func(domain.Account) bool) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if match(a) {
			return &a, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memoryAccounts) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return r.find(func(a domain.Account) bool { return a.ID == id })
}

func (r memoryAccounts) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.find(func(a domain.Account) bool { return a.Username == username })
}

func (r memoryAccounts) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.find(func(a domain.Account) bool { return strings.EqualFold(a.Email, email) })
}

func (r memoryAccounts) Update(ctx context.Context, id uuid.UUID, update domain.AccountUpdate) (*domain.Account, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if update.Email != nil {
		for otherID, other := range s.accounts {
			if otherID != id && strings.EqualFold(other.Email, *update.Email) {
				return nil, uniqueViolation("user_account_email_key")
			}
		}
		a.Email = *update.Email
	}
	if update.FirstName != nil {
		a.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		a.LastName = *update.LastName
	}
	if update.Bio != nil {
		a.Bio = *update.Bio
	}
	if update.AvatarURL != nil {
		a.AvatarURL = update.AvatarURL
	}
	a.UpdatedAt = s.tick()
	s.accounts[id] = a
	return &a, nil
}

func (r memoryAccounts) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return sql.ErrNoRows
	}
	a.PasswordHash, a.PasswordSalt = passwordHash, passwordSalt
	s.accounts[id] = a
	return nil
}

func (r memoryAccounts) PublicProfile(ctx context.Context, username string, viewer *uuid.UUID) (*domain.PublicProfile, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Username != username {
			continue
		}
		profile := domain.PublicProfile{Account: a}
		for _, p := range s.posts {
			if p.UserID == a.ID && p.IsPublic {
				profile.PostsCount++
			}
		}
		if viewer != nil {
			_, profile.IsFollowing = s.relations[domain.FollowOf(*viewer, a.ID)]
		}
		return &profile, nil
	}
	return nil, sql.ErrNoRows
}

// sessions

type memorySessions struct{ s *memoryStore }

func (r memorySessions) CreateSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*domain.Session, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	session := domain.Session{
		ID:        int64(len(s.sessions) + 1),
		UserID:    userID,
		Token:     token,
		CreatedAt: s.now,
		ExpiresAt: expiresAt,
		IsActive:  true,
	}
	s.sessions[token] = session
	return &session, nil
}

func (r memorySessions) DeactivateSession(ctx context.Context, token string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[token]; ok {
		session.IsActive = false
		s.sessions[token] = session
	}
	return nil
}

func (r memorySessions) FindActiveSession(ctx context.Context, token string) (*domain.Session, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok || !session.IsActive {
		return nil, sql.ErrNoRows
	}
	return &session, nil
}

// destinations

type memoryDestinations struct{ s *memoryStore }

func (r memoryDestinations) Create(ctx context.Context, input domain.DestinationCreate) (*domain.Destination, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.destinations {
		if strings.EqualFold(d.Name, input.Name) && strings.EqualFold(d.Country, input.Country) {
			return nil, uniqueViolation("destination_name_country_key")
		}
	}
	created := s.tick()
	dest := domain.Destination{
		ID:               uuid.New(),
		Name:             input.Name,
		Country:          input.Country,
		City:             input.City,
		Latitude:         input.Latitude,
		Longitude:        input.Longitude,
		Description:      input.Description,
		FeaturedImageURL: input.FeaturedImageURL,
		Has3DModel:       input.Has3DModel,
		ModelType:        input.ModelType,
		CreatedAt:        created,
		UpdatedAt:        created,
	}
	s.destinations[dest.ID] = dest
	return &dest, nil
}

func (r memoryDestinations) FindByID(ctx context.Context, id uuid.UUID) (*domain.Destination, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	dest, ok := s.destinations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	dest.IsTrending = s.trending[id].Score > 0
	return &dest, nil
}

func (r memoryDestinations) List(ctx context.Context, filter domain.DestinationListFilter) ([]domain.Destination, int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.Destination, 0, len(s.destinations))
	for _, d := range s.destinations {
		if filter.Search != "" && !containsFold(d.Name, filter.Search) && !containsFold(d.City, filter.Search) && !containsFold(d.Description, filter.Search) {
			continue
		}
		if filter.Country != "" && !containsFold(d.Country, filter.Country) {
			continue
		}
		if filter.Only3D && !d.Has3DModel {
			continue
		}
		d.IsTrending = s.trending[d.ID].Score > 0
		items = append(items, d)
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch filter.Sort {
		case domain.DestinationSortPostsAsc:
			if a.PostsCount != b.PostsCount {
				return a.PostsCount < b.PostsCount
			}
		case domain.DestinationSortNameAsc:
			return a.Name < b.Name
		case domain.DestinationSortNameDesc:
			return a.Name > b.Name
		case domain.DestinationSortCreatedAsc:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		case domain.DestinationSortCreatedDesc:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		default:
			if a.PostsCount != b.PostsCount {
				return a.PostsCount > b.PostsCount
			}
		}
		return a.Name < b.Name
	})
	total := int64(len(items))
	return window(items, filter.Page.Size, filter.Page.Offset()), total, nil
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return slices.Clone(items)
}

// posts

type memoryPosts struct{ s *memoryStore }

func (r memoryPosts) matches(p domain.Post, q domain.PostQuery) bool {
	s := r.s
	if !p.IsPublic {
		return false
	}
	if q.CreatedAfter != nil && p.CreatedAt.Before(*q.CreatedAfter) {
		return false
	}
	if q.FollowedBy != nil {
		if _, ok := s.relations[domain.FollowOf(*q.FollowedBy, p.UserID)]; !ok {
			return false
		}
	}
	if q.Only3D && !p.Featured3D {
		return false
	}
	if q.Exclude3D && p.Featured3D {
		return false
	}
	if q.AuthorUsername != "" && !strings.EqualFold(s.accounts[p.UserID].Username, q.AuthorUsername) {
		return false
	}
	if q.DestinationID != nil && p.DestinationID != *q.DestinationID {
		return false
	}
	if q.Country != "" && !containsFold(s.destinations[p.DestinationID].Country, q.Country) {
		return false
	}
	if len(q.Tags) > 0 {
		tagged := false
		for _, id := range s.postTags[p.ID] {
			if slices.Contains(q.Tags, s.tags[id].Name) {
				tagged = true
				break
			}
		}
		if !tagged {
			return false
		}
	}
	if q.Search != "" && !containsFold(p.Description, q.Search) &&
		!containsFold(s.accounts[p.UserID].Username, q.Search) &&
		!containsFold(s.destinations[p.DestinationID].Name, q.Search) {
		return false
	}
	return true
}

func postLess(a, b domain.Post, order domain.PostSort) bool {
	switch order {
	case domain.PostSortEngagement:
		if ea, eb := a.EngagementScore(), b.EngagementScore(); ea != eb {
			return ea > eb
		}
	case domain.PostSortLikesDesc:
		if a.LikesCount != b.LikesCount {
			return a.LikesCount > b.LikesCount
		}
	case domain.PostSortLikesAsc:
		if a.LikesCount != b.LikesCount {
			return a.LikesCount < b.LikesCount
		}
	case domain.PostSortViewsDesc:
		if a.ViewsCount != b.ViewsCount {
			return a.ViewsCount > b.ViewsCount
		}
	case domain.PostSortViewsAsc:
		if a.ViewsCount != b.ViewsCount {
			return a.ViewsCount < b.ViewsCount
		}
	case domain.PostSortCreatedAsc:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() > b.ID.String()
}

func (r memoryPosts) selectLocked(q domain.PostQuery) []domain.Post {
	out := make([]domain.Post, 0)
	for _, p := range r.s.posts {
		if r.matches(p, q) {
			out = append(out, r.s.joinPostLocked(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return postLess(out[i], out[j], q.Sort) })
	return out
}

func (r memoryPosts) List(ctx context.Context, q domain.PostQuery) ([]domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return window(r.selectLocked(q), q.Limit, q.Offset), nil
}

func (r memoryPosts) Count(ctx context.Context, q domain.PostQuery) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.selectLocked(q))), nil
}

func (r memoryPosts) FindByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	joined := r.s.joinPostLocked(p)
	return &joined, nil
}

func (r memoryPosts) Update(ctx context.Context, id uuid.UUID, update domain.PostUpdate) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return sql.ErrNoRows
	}
	if update.Description != nil {
		p.Description = *update.Description
	}
	if update.MusicName != nil {
		p.MusicName = *update.MusicName
	}
	if update.MusicArtist != nil {
		p.MusicArtist = *update.MusicArtist
	}
	if update.Featured3D != nil {
		p.Featured3D = *update.Featured3D
	}
	if update.IsPublic != nil {
		p.IsPublic = *update.IsPublic
	}
	p.UpdatedAt = s.tick()
	s.posts[id] = p
	return nil
}

func (r memoryPosts) TagsFor(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID][]string, len(postIDs))
	for _, id := range postIDs {
		for _, tagID := range s.postTags[id] {
			out[id] = append(out[id], s.tags[tagID].Name)
		}
		slices.Sort(out[id])
	}
	return out, nil
}

func (r memoryPosts) LikedBy(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID]bool, len(postIDs))
	for _, id := range postIDs {
		if _, ok := s.relations[domain.LikeOf(userID, id)]; ok {
			out[id] = true
		}
	}
	return out, nil
}

// comments

type memoryComments struct{ s *memoryStore }

func (r memoryComments) FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	joined := r.s.joinCommentLocked(c)
	return &joined, nil
}

func (r memoryComments) topLevelLocked(postID uuid.UUID) []domain.Comment {
	out := make([]domain.Comment, 0)
	for _, c := range r.s.comments {
		if c.PostID == postID && c.ParentID == nil {
			out = append(out, r.s.joinCommentLocked(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memoryComments) ListTopLevel(ctx context.Context, postID uuid.UUID, limit, offset int) ([]domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return window(r.topLevelLocked(postID), limit, offset), nil
}

func (r memoryComments) CountTopLevel(ctx context.Context, postID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.topLevelLocked(postID))), nil
}

func (r memoryComments) ListReplies(ctx context.Context, parentIDs []uuid.UUID, perParent int) (map[uuid.UUID][]domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[uuid.UUID][]domain.Comment, len(parentIDs))
	for _, parentID := range parentIDs {
		replies := make([]domain.Comment, 0)
		for _, c := range r.s.comments {
			if c.ParentID != nil && *c.ParentID == parentID {
				replies = append(replies, r.s.joinCommentLocked(c))
			}
		}
		sort.Slice(replies, func(i, j int) bool { return replies[i].CreatedAt.Before(replies[j].CreatedAt) })
		if len(replies) > 0 {
			out[parentID] = window(replies, perParent, 0)
		}
	}
	return out, nil
}

// tags

type memoryTags struct{ s *memoryStore }

func (r memoryTags) popularLocked() []domain.Tag {
	out := make([]domain.Tag, 0)
	for _, t := range r.s.tags {
		if t.PostsCount > 0 {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PostsCount != out[j].PostsCount {
			return out[i].PostsCount > out[j].PostsCount
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (r memoryTags) Popular(ctx context.Context, limit, offset int) ([]domain.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return window(r.popularLocked(), limit, offset), nil
}

func (r memoryTags) CountPopular(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.popularLocked())), nil
}

// preferences

type memoryPreferences struct{ s *memoryStore }

func (r memoryPreferences) Get(ctx context.Context, userID uuid.UUID) (*domain.UserPreference, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pref, ok := r.s.prefs[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	pref.PreferredDestinations = slices.Clone(pref.PreferredDestinations)
	pref.FavoriteTags = slices.Clone(pref.FavoriteTags)
	return &pref, nil
}

func (r memoryPreferences) Save(ctx context.Context, pref domain.UserPreference) (*domain.UserPreference, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range pref.PreferredDestinations {
		if _, ok := s.destinations[id]; !ok {
			return nil, foreignKeyViolation("user_preference_destination_destination_id_fkey")
		}
	}
	for _, id := range pref.FavoriteTags {
		if _, ok := s.tags[id]; !ok {
			return nil, foreignKeyViolation("user_preference_tag_tag_id_fkey")
		}
	}
	pref.PreferredDestinations = slices.Clone(pref.PreferredDestinations)
	pref.FavoriteTags = slices.Clone(pref.FavoriteTags)
	pref.UpdatedAt = s.tick()
	s.prefs[pref.UserID] = pref
	return &pref, nil
}

// trending

type memoryTrending struct {
	s        *memoryStore
	upserts  int
	failWith error
}

func (r *memoryTrending) Activity(ctx context.Context, dayStart, weekStart time.Time) ([]domain.DestinationActivity, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.DestinationActivity, 0, len(s.destinations))
	for id := range s.destinations {
		row := domain.DestinationActivity{DestinationID: id}
		for _, p := range s.posts {
			if p.DestinationID != id || p.CreatedAt.Before(weekStart) {
				continue
			}
			row.PostsLastWeek++
			if !p.CreatedAt.Before(dayStart) {
				row.PostsLast24h++
			}
			row.Engagement += p.LikesCount + p.CommentsCount + p.SharesCount
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *memoryTrending) Upsert(ctx context.Context, rows []domain.TrendingDestination) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	r.upserts++
	for _, row := range rows {
		s.trending[row.DestinationID] = row
	}
	return nil
}

func (r *memoryTrending) List(ctx context.Context, limit, offset int) ([]domain.TrendingDestination, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TrendingDestination, 0, len(s.trending))
	for id, row := range s.trending {
		row.Destination = s.destinations[id]
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Destination.Name < out[j].Destination.Name
	})
	return window(out, limit, offset), nil
}

func (r *memoryTrending) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.trending)), nil
}

// search

type memorySearch struct{ s *memoryStore }

func (r memorySearch) Users(ctx context.Context, query string, limit int) ([]domain.PublicProfile, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.PublicProfile, 0)
	for _, a := range s.accounts {
		if containsFold(a.Username, query) || containsFold(a.FirstName, query) || containsFold(a.LastName, query) {
			out = append(out, domain.PublicProfile{Account: a})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := matchPosition(out[i].Username, query), matchPosition(out[j].Username, query)
		if pi != pj {
			return pi < pj
		}
		return out[i].Username < out[j].Username
	})
	return window(out, limit, 0), nil
}

func (r memorySearch) Destinations(ctx context.Context, query string, limit int) ([]domain.Destination, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Destination, 0)
	for _, d := range s.destinations {
		if containsFold(d.Name, query) || containsFold(d.Country, query) || containsFold(d.City, query) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := matchPosition(out[i].Name, query), matchPosition(out[j].Name, query)
		if pi != pj {
			return pi < pj
		}
		if out[i].PostsCount != out[j].PostsCount {
			return out[i].PostsCount > out[j].PostsCount
		}
		return out[i].Name < out[j].Name
	})
	return window(out, limit, 0), nil
}

func (r memorySearch) Posts(ctx context.Context, query string, limit int) ([]domain.Post, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Post, 0)
	for _, p := range s.posts {
		if p.IsPublic && (containsFold(p.Description, query) || containsFold(s.accounts[p.UserID].Username, query)) {
			out = append(out, s.joinPostLocked(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := matchPosition(out[i].Description, query), matchPosition(out[j].Description, query)
		if pi != pj {
			return pi < pj
		}
		return postLess(out[i], out[j], domain.PostSortCreatedDesc)
	})
	return window(out, limit, 0), nil
}

func (r memorySearch) Tags(ctx context.Context, query string, limit int) ([]domain.Tag, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Tag, 0)
	for _, t := range s.tags {
		if containsFold(t.Name, query) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := matchPosition(out[i].Name, query), matchPosition(out[j].Name, query)
		if pi != pj {
			return pi < pj
		}
		if out[i].PostsCount != out[j].PostsCount {
			return out[i].PostsCount > out[j].PostsCount
		}
		return out[i].Name < out[j].Name
	})
	return window(out, limit, 0), nil
}

// object storage

type memoryObjectStorage struct {
	mu        sync.Mutex
	objects   map[string]string
	removed   []string
	uploadErr error
}

func newMemoryObjectStorage() *memoryObjectStorage {
	return &memoryObjectStorage{objects: make(map[string]string)}
}

func (m *memoryObjectStorage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := bucket + "/" + objectName
	m.objects[key] = contentType
	return "http://objects.test/" + key, nil
}

func (m *memoryObjectStorage) Remove(ctx context.Context, bucket, objectName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := bucket + "/" + objectName
	delete(m.objects, key)
	m.removed = append(m.removed, key)
	return nil
}

func (m *memoryObjectStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// locks

type memoryLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemoryLocker() *memoryLocker {
	return &memoryLocker{held: make(map[string]bool)}
}

func (l *memoryLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, true, nil
}

var (
	_ ports.Ledger                = (*memoryStore)(nil)
	_ ports.AccountRepository     = memoryAccounts{}
	_ ports.SessionRepository     = memorySessions{}
	_ ports.DestinationRepository = memoryDestinations{}
	_ ports.PostRepository        = memoryPosts{}
	_ ports.CommentRepository     = memoryComments{}
	_ ports.TagRepository         = memoryTags{}
	_ ports.PreferenceRepository  = memoryPreferences{}
	_ ports.TrendingRepository    = (*memoryTrending)(nil)
	_ ports.SearchRepository      = memorySearch{}
	_ ports.ObjectStorage         = (*memoryObjectStorage)(nil)
	_ ports.JobLocker             = (*memoryLocker)(nil)
)

type testEnv struct {
	store      *memoryStore
	storage    *memoryObjectStorage
	feed       *FeedService
	engagement *EngagementService
	posts      *PostService
}

func newTestEnv() *testEnv {
	store := newMemoryStore()
	storage := newMemoryObjectStorage()
	limits := PageLimits{Default: 20, Max: 100}

	feed := NewFeedService(memoryPosts{store}, memoryPreferences{store}, PageLimits{Default: 10, Max: 100})
	feed.now = func() time.Time { return testNow }

	return &testEnv{
		store:      store,
		storage:    storage,
		feed:       feed,
		engagement: NewEngagementService(store, memoryPosts{store}, memoryAccounts{store}, memoryComments{store}, limits),
		posts: NewPostService(memoryPosts{store}, memoryComments{store}, memoryDestinations{store}, store, storage, feed, discardLogger(), PostServiceConfig{
			VideoBucket: "travelreel-videos",
			ImageBucket: "travelreel-images",
			Limits:      limits,
		}),
	}
}
