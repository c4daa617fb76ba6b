package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
)

func TestEngagementService_ToggleLike_LikeThenUnlike(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	alice := env.store.seedAccount("alice")
	bob := env.store.seedAccount("bob")
	bali := env.store.seedDestination("Bali", "Indonesia", true)
	post := env.store.seedPost(alice, bali, seedPostOptions{description: "sunset at uluwatu"})

	res, err := env.engagement.ToggleLike(ctx, bob.ID, post.ID)
	if err != nil {
		t.Fatalf("ToggleLike returned error: %v", err)
	}
	if !res.Present || res.Count(domain.CounterPostLikes) != 1 {
		t.Fatalf("expected liked with 1 like, got present=%v likes=%d", res.Present, res.Count(domain.CounterPostLikes))
	}

	detail, err := env.posts.Get(ctx, post.ID, &bob.ID, ViewContext{})
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !detail.IsLiked || detail.LikesCount != 1 {
		t.Fatalf("expected is_liked=true likes=1, got %v %d", detail.IsLiked, detail.LikesCount)
	}
	if got := env.store.account(alice.ID).TotalLikes; got != 0 {
		t.Fatalf("expected a like to leave author total_likes at 0, got %d", got)
	}

	res, err = env.engagement.ToggleLike(ctx, bob.ID, post.ID)
	if err != nil {
		t.Fatalf("second ToggleLike returned error: %v", err)
	}
	if res.Present || res.Count(domain.CounterPostLikes) != 0 {
		t.Fatalf("expected unliked with 0 likes, got present=%v likes=%d", res.Present, res.Count(domain.CounterPostLikes))
	}

	detail, err = env.posts.Get(ctx, post.ID, &bob.ID, ViewContext{})
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if detail.IsLiked || detail.LikesCount != 0 {
		t.Fatalf("expected is_liked=false likes=0, got %v %d", detail.IsLiked, detail.LikesCount)
	}
	if got := env.store.account(alice.ID).TotalLikes; got != 0 {
		t.Fatalf("expected author total_likes 0, got %d", got)
	}
}

func TestEngagementService_ToggleLike_ConcurrentCounterMatchesRows(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	author := env.store.seedAccount("author")
	dest := env.store.seedDestination("Kyoto", "Japan", false)
	post := env.store.seedPost(author, dest, seedPostOptions{})

	const users = 40
	likers := make([]domain.Account, users)
	for i := range likers {
		likers[i] = env.store.seedAccount(fmt.Sprintf("liker%02d", i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, users*2)
	for i, liker := range likers {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			toggles := 1
			if i%2 == 0 {
				toggles = 2
			}
			for n := 0; n < toggles; n++ {
				if _, err := env.engagement.ToggleLike(ctx, id, post.ID); err != nil {
					errs <- err
				}
			}
		}(i, liker.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("ToggleLike returned error: %v", err)
	}

	stored, _ := env.store.post(post.ID)
	rows := env.store.relationCount(domain.RelationLike)
	if rows != users/2 {
		t.Fatalf("expected %d like rows, got %d", users/2, rows)
	}
	if stored.LikesCount != int64(rows) {
		t.Fatalf("likes_count %d drifted from %d like rows", stored.LikesCount, rows)
	}
}

func TestEngagementService_ToggleLike_HidesPrivatePosts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	alice := env.store.seedAccount("alice")
	bob := env.store.seedAccount("bob")
	dest := env.store.seedDestination("Petra", "Jordan", false)
	post := env.store.seedPost(alice, dest, seedPostOptions{private: true})

	if _, err := env.engagement.ToggleLike(ctx, bob.ID, post.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
	if _, err := env.engagement.ToggleLike(ctx, bob.ID, uuid.New()); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound for unknown post, got %v", err)
	}
}

func TestEngagementService_ToggleFollow_RejectsSelf(t *testing.T) {
	env := newTestEnv()
	alice := env.store.seedAccount("alice")

	if _, err := env.engagement.ToggleFollow(context.Background(), alice.ID, alice.ID); !errors.Is(err, ErrSelfFollow) {
		t.Fatalf("expected ErrSelfFollow, got %v", err)
	}
	if got := env.store.account(alice.ID); got.FollowersCount != 0 || got.FollowingCount != 0 {
		t.Fatalf("self follow must not move counters, got %+v", got)
	}
}

func TestEngagementService_ToggleFollow_UnknownAccount(t *testing.T) {
	env := newTestEnv()
	alice := env.store.seedAccount("alice")

	if _, err := env.engagement.ToggleFollow(context.Background(), alice.ID, uuid.New()); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestEngagementService_ToggleFollow_MovesBothCounters(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	alice := env.store.seedAccount("alice")
	bob := env.store.seedAccount("bob")

	res, err := env.engagement.ToggleFollow(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("ToggleFollow returned error: %v", err)
	}
	if !res.Present || res.Count(domain.CounterAccountFollowers) != 1 {
		t.Fatalf("expected following with 1 follower, got %+v", res)
	}
	if got := env.store.account(alice.ID).FollowingCount; got != 1 {
		t.Fatalf("expected follower following_count 1, got %d", got)
	}

	res, err = env.engagement.ToggleFollow(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("second ToggleFollow returned error: %v", err)
	}
	if res.Present || res.Count(domain.CounterAccountFollowers) != 0 {
		t.Fatalf("expected unfollowed with 0 followers, got %+v", res)
	}
	if got := env.store.account(alice.ID).FollowingCount; got != 0 {
		t.Fatalf("expected follower following_count 0, got %d", got)
	}
	if rows := env.store.relationCount(domain.RelationFollow); rows != 0 {
		t.Fatalf("expected no follow rows, got %d", rows)
	}
}

func TestEngagementService_ToggleFollow_RacingDuplicateCountsOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	alice := env.store.seedAccount("alice")
	bob := env.store.seedAccount("bob")

	if _, err := env.engagement.ToggleFollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("ToggleFollow returned error: %v", err)
	}

	// The duplicate request started before the first one committed, so it
	// does not see the row and tries to insert a second one.
	env.store.staleRelationReads = true
	_, err := env.engagement.ToggleFollow(ctx, alice.ID, bob.ID)
	env.store.staleRelationReads = false
	if !errors.Is(err, ErrToggleConflict) {
		t.Fatalf("expected ErrToggleConflict, got %v", err)
	}

	if rows := env.store.relationCount(domain.RelationFollow); rows != 1 {
		t.Fatalf("expected exactly one follow row, got %d", rows)
	}
	if got := env.store.account(bob.ID).FollowersCount; got != 1 {
		t.Fatalf("expected followers_count 1, got %d", got)
	}
	if got := env.store.account(alice.ID).FollowingCount; got != 1 {
		t.Fatalf("expected following_count 1, got %d", got)
	}
}

func TestEngagementService_ToggleLike_ThenPostDeleted(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	alice := env.store.seedAccount("alice")
	bob := env.store.seedAccount("bob")
	bali := env.store.seedDestination("Bali", "Indonesia", true)
	post, err := env.posts.Create(ctx, alice.ID, PostCreateInput{DestinationID: bali.ID, Video: testVideo()})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := env.engagement.ToggleLike(ctx, bob.ID, post.ID); err != nil {
		t.Fatalf("ToggleLike returned error: %v", err)
	}
	if err := env.posts.Delete(ctx, post.ID, alice.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if got := env.store.account(alice.ID).TotalLikes; got != 0 {
		t.Fatalf("expected author total_likes 0, got %d", got)
	}
	if rows := env.store.relationCount(domain.RelationLike); rows != 0 {
		t.Fatalf("expected the like to go with the post, got %d rows", rows)
	}
}

func TestEngagementService_ToggleFollow_AdjustsInLockOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	alice := env.store.seedAccount("alice")
	bob := env.store.seedAccount("bob")
	low, high := alice.ID, bob.ID
	if bytes.Compare(low[:], high[:]) > 0 {
		low, high = high, low
	}

	for _, pair := range [][2]uuid.UUID{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
		for range 2 {
			if _, err := env.engagement.ToggleFollow(ctx, pair[0], pair[1]); err != nil {
				t.Fatalf("ToggleFollow returned error: %v", err)
			}
			got := env.store.takeAdjusted()
			if len(got) != 2 || got[0].EntityID != low || got[1].EntityID != high {
				t.Fatalf("expected account rows adjusted lowest id first, got %+v", got)
			}
		}
	}
}

type conflictLedger struct {
	err error
}

func (l conflictLedger) WithinTx(context.Context, func(tx ports.LedgerTx) error) error {
	return l.err
}

func TestEngagementService_Toggle_TxConflicts(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	alice := store.seedAccount("alice")
	bob := store.seedAccount("bob")
	post := store.seedPost(alice, store.seedDestination("Bali", "Indonesia", true), seedPostOptions{})

	for _, code := range []string{pgDeadlockDetected, pgSerializationFailure} {
		svc := NewEngagementService(conflictLedger{err: &pgconn.PgError{Code: code}}, memoryPosts{store}, memoryAccounts{store}, memoryComments{store}, defaultListLimits)
		if _, err := svc.ToggleFollow(ctx, alice.ID, bob.ID); !errors.Is(err, ErrToggleConflict) {
			t.Fatalf("%s: expected ErrToggleConflict from follow, got %v", code, err)
		}
		if _, err := svc.ToggleLike(ctx, bob.ID, post.ID); !errors.Is(err, ErrToggleConflict) {
			t.Fatalf("%s: expected ErrToggleConflict from like, got %v", code, err)
		}
	}
}

func TestEngagementService_ToggleLike_DriftedCounterRollsBack(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	alice := env.store.seedAccount("alice")
	bob := env.store.seedAccount("bob")
	post := env.store.seedPost(alice, env.store.seedDestination("Bali", "Indonesia", true), seedPostOptions{})

	// A like row whose increment was lost: likes_count is already 0.
	env.store.mu.Lock()
	env.store.relations[domain.LikeOf(bob.ID, post.ID)] = struct{}{}
	env.store.mu.Unlock()

	_, err := env.engagement.ToggleLike(ctx, bob.ID, post.ID)
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23514" {
		t.Fatalf("expected a check violation, got %v", err)
	}
	if rows := env.store.relationCount(domain.RelationLike); rows != 1 {
		t.Fatalf("expected the unlike to roll back, got %d like rows", rows)
	}
	if got, _ := env.store.post(post.ID); got.LikesCount != 0 {
		t.Fatalf("expected likes_count to stay 0, got %d", got.LikesCount)
	}
}

func TestEngagementService_AddComment_FlattensNestedReplies(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	alice := env.store.seedAccount("alice")
	bob := env.store.seedAccount("bob")
	dest := env.store.seedDestination("Santorini", "Greece", true)
	post := env.store.seedPost(alice, dest, seedPostOptions{})

	top, err := env.engagement.AddComment(ctx, bob.ID, post.ID, "  stunning  ", nil)
	if err != nil {
		t.Fatalf("AddComment returned error: %v", err)
	}
	if top.Content != "stunning" {
		t.Fatalf("expected trimmed content, got %q", top.Content)
	}
	reply, err := env.engagement.AddComment(ctx, alice.ID, post.ID, "thanks!", &top.ID)
	if err != nil {
		t.Fatalf("AddComment reply returned error: %v", err)
	}
	nested, err := env.engagement.AddComment(ctx, bob.ID, post.ID, "anytime", &reply.ID)
	if err != nil {
		t.Fatalf("AddComment nested reply returned error: %v", err)
	}
	if nested.ParentID == nil || *nested.ParentID != top.ID {
		t.Fatalf("expected nested reply re-parented to %s, got %v", top.ID, nested.ParentID)
	}

	stored, _ := env.store.post(post.ID)
	if stored.CommentsCount != 3 {
		t.Fatalf("expected comments_count 3, got %d", stored.CommentsCount)
	}

	page, err := env.engagement.ListComments(ctx, post.ID, domain.Page{})
	if err != nil {
		t.Fatalf("ListComments returned error: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 {
		t.Fatalf("expected one top-level comment, got total=%d items=%d", page.Total, len(page.Items))
	}
	if replies := page.Items[0].Replies; len(replies) != 2 || replies[0].ID != reply.ID {
		t.Fatalf("expected two replies oldest first, got %+v", replies)
	}
}

func TestEngagementService_ListComments_CapsReplies(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	alice := env.store.seedAccount("alice")
	dest := env.store.seedDestination("Reykjavik", "Iceland", false)
	post := env.store.seedPost(alice, dest, seedPostOptions{})

	top, err := env.engagement.AddComment(ctx, alice.ID, post.ID, "first", nil)
	if err != nil {
		t.Fatalf("AddComment returned error: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := env.engagement.AddComment(ctx, alice.ID, post.ID, fmt.Sprintf("reply %d", i), &top.ID); err != nil {
			t.Fatalf("AddComment reply returned error: %v", err)
		}
	}

	page, err := env.engagement.ListComments(ctx, post.ID, domain.Page{Number: 1, Size: 10})
	if err != nil {
		t.Fatalf("ListComments returned error: %v", err)
	}
	if got := len(page.Items[0].Replies); got != repliesPerComment {
		t.Fatalf("expected %d replies, got %d", repliesPerComment, got)
	}
}

func TestEngagementService_AddComment_Validation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	alice := env.store.seedAccount("alice")
	dest := env.store.seedDestination("Cusco", "Peru", false)
	post := env.store.seedPost(alice, dest, seedPostOptions{})
	other := env.store.seedPost(alice, dest, seedPostOptions{})

	cases := map[string]func() error{
		"empty": func() error {
			_, err := env.engagement.AddComment(ctx, alice.ID, post.ID, "   ", nil)
			return err
		},
		"too long": func() error {
			_, err := env.engagement.AddComment(ctx, alice.ID, post.ID, strings.Repeat("a", MaxCommentLength+1), nil)
			return err
		},
		"parent on another post": func() error {
			parent, err := env.engagement.AddComment(ctx, alice.ID, other.ID, "elsewhere", nil)
			if err != nil {
				return err
			}
			_, err = env.engagement.AddComment(ctx, alice.ID, post.ID, "reply", &parent.ID)
			return err
		},
	}
	for name, run := range cases {
		t.Run(name, func(t *testing.T) {
			if err := run(); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}

	if _, err := env.engagement.AddComment(ctx, alice.ID, post.ID, "hi", &post.ID); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}
}

func TestEngagementService_Share_CountsAndDefaultsPlatform(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	alice := env.store.seedAccount("alice")
	bob := env.store.seedAccount("bob")
	dest := env.store.seedDestination("Banff", "Canada", false)
	post := env.store.seedPost(alice, dest, seedPostOptions{})

	res, err := env.engagement.Share(ctx, bob.ID, post.ID, "")
	if err != nil {
		t.Fatalf("Share returned error: %v", err)
	}
	if res.Share.Platform != domain.ShareNative || res.SharesCount != 1 {
		t.Fatalf("expected native share with count 1, got %s %d", res.Share.Platform, res.SharesCount)
	}
	res, err = env.engagement.Share(ctx, bob.ID, post.ID, domain.ShareWhatsApp)
	if err != nil {
		t.Fatalf("Share returned error: %v", err)
	}
	if res.SharesCount != 2 {
		t.Fatalf("shares are not toggles, expected 2, got %d", res.SharesCount)
	}

	if _, err := env.engagement.Share(ctx, bob.ID, post.ID, "myspace"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
