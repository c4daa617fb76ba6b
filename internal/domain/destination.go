package domain

import (
	"time"

	"github.com/google/uuid"
)

type ModelType string

const (
	ModelTypeIsland   ModelType = "island"
	ModelTypeCity     ModelType = "city"
	ModelTypeMountain ModelType = "mountain"
	ModelTypeBeach    ModelType = "beach"
	ModelTypeTemple   ModelType = "temple"
	ModelTypeCustom   ModelType = "custom"
)

var ModelTypes = []ModelType{
	ModelTypeIsland,
	ModelTypeCity,
	ModelTypeMountain,
	ModelTypeBeach,
	ModelTypeTemple,
	ModelTypeCustom,
}

func (m ModelType) Valid() bool {
	for _, candidate := range ModelTypes {
		if m == candidate {
			return true
		}
	}
	return false
}

type Destination struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Country          string    `db:"country" json:"country"`
	City             string    `db:"city" json:"city"`
	Latitude         float64   `db:"latitude" json:"latitude"`
	Longitude        float64   `db:"longitude" json:"longitude"`
	Description      string    `db:"description" json:"description"`
	FeaturedImageURL *string   `db:"featured_image_url" json:"featured_image,omitempty"`
	Has3DModel       bool      `db:"has_3d_model" json:"has_3d_model"`
	ModelType        ModelType `db:"model_type" json:"model_type"`
	PostsCount       int64     `db:"posts_count" json:"posts_count"`
	VisitsCount      int64     `db:"visits_count" json:"visits_count"`
	IsTrending       bool      `db:"is_trending" json:"is_trending"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"-"`
}

type DestinationCreate struct {
	Name             string
	Country          string
	City             string
	Latitude         float64
	Longitude        float64
	Description      string
	FeaturedImageURL *string
	Has3DModel       bool
	ModelType        ModelType
}

type DestinationSort string

const (
	DestinationSortPostsDesc   DestinationSort = "-posts_count"
	DestinationSortPostsAsc    DestinationSort = "posts_count"
	DestinationSortNameAsc     DestinationSort = "name"
	DestinationSortNameDesc    DestinationSort = "-name"
	DestinationSortCreatedAsc  DestinationSort = "created_at"
	DestinationSortCreatedDesc DestinationSort = "-created_at"
)

func (s DestinationSort) Valid() bool {
	switch s {
	case DestinationSortPostsDesc, DestinationSortPostsAsc,
		DestinationSortNameAsc, DestinationSortNameDesc,
		DestinationSortCreatedAsc, DestinationSortCreatedDesc:
		return true
	}
	return false
}

type DestinationListFilter struct {
	Search  string
	Country string
	Only3D  bool
	Sort    DestinationSort
	Page    Page
}
