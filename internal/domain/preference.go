package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserPreference struct {
	UserID                uuid.UUID   `db:"user_id" json:"-"`
	Show3DContent         bool        `db:"show_3d_content" json:"show_3d_content"`
	AutoPlayVideos        bool        `db:"auto_play_videos" json:"auto_play_videos"`
	ShowTrending          bool        `db:"show_trending" json:"show_trending"`
	PreferredDestinations []uuid.UUID `db:"-" json:"preferred_destinations"`
	FavoriteTags          []uuid.UUID `db:"-" json:"favorite_tags"`
	UpdatedAt             time.Time   `db:"updated_at" json:"updated_at"`
}

func DefaultPreference(userID uuid.UUID) UserPreference {
	return UserPreference{
		UserID:                userID,
		Show3DContent:         true,
		AutoPlayVideos:        true,
		ShowTrending:          true,
		PreferredDestinations: []uuid.UUID{},
		FavoriteTags:          []uuid.UUID{},
	}
}

type PreferenceUpdate struct {
	Show3DContent         *bool
	AutoPlayVideos        *bool
	ShowTrending          *bool
	PreferredDestinations *[]uuid.UUID
	FavoriteTags          *[]uuid.UUID
}

func (u PreferenceUpdate) Apply(p *UserPreference) {
	if u.Show3DContent != nil {
		p.Show3DContent = *u.Show3DContent
	}
	if u.AutoPlayVideos != nil {
		p.AutoPlayVideos = *u.AutoPlayVideos
	}
	if u.ShowTrending != nil {
		p.ShowTrending = *u.ShowTrending
	}
	if u.PreferredDestinations != nil {
		p.PreferredDestinations = dedupeIDs(*u.PreferredDestinations)
	}
	if u.FavoriteTags != nil {
		p.FavoriteTags = dedupeIDs(*u.FavoriteTags)
	}
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
