package domain

import (
	"bytes"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Counter names one denormalized engagement counter column.
type Counter string

const (
	CounterPostLikes         Counter = "post.likes_count"
	CounterPostComments      Counter = "post.comments_count"
	CounterPostShares        Counter = "post.shares_count"
	CounterPostViews         Counter = "post.views_count"
	CounterAccountFollowers  Counter = "account.followers_count"
	CounterAccountFollowing  Counter = "account.following_count"
	CounterAccountTotalLikes Counter = "account.total_likes"
	CounterAccountTotalViews Counter = "account.total_views"
	CounterDestinationPosts  Counter = "destination.posts_count"
	CounterDestinationVisits Counter = "destination.visits_count"
	CounterTagPosts          Counter = "tag.posts_count"
)

// Table is the entity a counter lives on: post, account, destination or tag.
func (c Counter) Table() string {
	table, _, _ := strings.Cut(string(c), ".")
	return table
}

type CounterRef struct {
	Counter  Counter
	EntityID uuid.UUID
}

// LockOrder returns a copy of refs sorted by (table, entity id), the order in
// which relation toggles lock their counter rows.
func LockOrder(refs []CounterRef) []CounterRef {
	out := slices.Clone(refs)
	slices.SortStableFunc(out, func(a, b CounterRef) int {
		if c := strings.Compare(a.Counter.Table(), b.Counter.Table()); c != 0 {
			return c
		}
		return bytes.Compare(a.EntityID[:], b.EntityID[:])
	})
	return out
}

func Floor(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
