package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
)

const destinationColumns = `
	d.id,
	d.name,
	d.country,
	d.city,
	d.latitude,
	d.longitude,
	d.description,
	d.featured_image_url,
	d.has_3d_model,
	d.model_type,
	d.posts_count,
	d.visits_count,
	d.created_at,
	d.updated_at,
	EXISTS (
		SELECT 1 FROM trending_destination t
		WHERE t.destination_id = d.id AND t.score > 0
	) AS is_trending
`

type DestinationRepository struct {
	db *sqlx.DB
}

func NewDestinationRepo(db *sqlx.DB) *DestinationRepository {
	return &DestinationRepository{db: db}
}

func (r *DestinationRepository) Create(ctx context.Context, input domain.DestinationCreate) (*domain.Destination, error) {
	modelType := input.ModelType
	if modelType == "" {
		modelType = domain.ModelTypeIsland
	}
	const query = `
		INSERT INTO destination (
			name, country, city, latitude, longitude, description,
			featured_image_url, has_3d_model, model_type
		) VALUES (
			:name, :country, :city, :latitude, :longitude, :description,
			:featured_image_url, :has_3d_model, :model_type
		)
		RETURNING id, name, country, city, latitude, longitude, description,
			featured_image_url, has_3d_model, model_type, posts_count, visits_count,
			created_at, updated_at, false AS is_trending
	`
	args := map[string]any{
		"name":               input.Name,
		"country":            input.Country,
		"city":               input.City,
		"latitude":           input.Latitude,
		"longitude":          input.Longitude,
		"description":        input.Description,
		"featured_image_url": input.FeaturedImageURL,
		"has_3d_model":       input.Has3DModel,
		"model_type":         modelType,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dest domain.Destination
	if rows.Next() {
		if err := rows.StructScan(&dest); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &dest, nil
}

func (r *DestinationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Destination, error) {
	query := `SELECT ` + destinationColumns + ` FROM destination d WHERE d.id = $1`
	var dest domain.Destination
	if err := r.db.GetContext(ctx, &dest, query, id); err != nil {
		return nil, err
	}
	return &dest, nil
}

func (r *DestinationRepository) List(ctx context.Context, filter domain.DestinationListFilter) ([]domain.Destination, int64, error) {
	where, params := destinationFilter(filter)

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM destination d WHERE `+where, params...); err != nil {
		return nil, 0, err
	}

	var builder strings.Builder
	builder.WriteString(`SELECT ` + destinationColumns + ` FROM destination d WHERE ` + where)
	builder.WriteString("\n\tORDER BY ")
	switch filter.Sort {
	case domain.DestinationSortPostsAsc:
		builder.WriteString("d.posts_count ASC, d.name ASC")
	case domain.DestinationSortNameAsc:
		builder.WriteString("d.name ASC")
	case domain.DestinationSortNameDesc:
		builder.WriteString("d.name DESC")
	case domain.DestinationSortCreatedAsc:
		builder.WriteString("d.created_at ASC, d.id ASC")
	case domain.DestinationSortCreatedDesc:
		builder.WriteString("d.created_at DESC, d.id DESC")
	default:
		builder.WriteString("d.posts_count DESC, d.name ASC")
	}

	limitPlaceholder := fmt.Sprintf("$%d", len(params)+1)
	offsetPlaceholder := fmt.Sprintf("$%d", len(params)+2)
	builder.WriteString(`
		LIMIT ` + limitPlaceholder + ` OFFSET ` + offsetPlaceholder + `
	`)
	params = append(params, filter.Page.Size, filter.Page.Offset())

	destinations := make([]domain.Destination, 0)
	if err := r.db.SelectContext(ctx, &destinations, builder.String(), params...); err != nil {
		return nil, 0, err
	}
	return destinations, total, nil
}

func destinationFilter(filter domain.DestinationListFilter) (string, []any) {
	clauses := []string{"TRUE"}
	params := make([]any, 0, 3)

	if trimmed := strings.TrimSpace(filter.Search); trimmed != "" {
		placeholder := fmt.Sprintf("$%d", len(params)+1)
		clauses = append(clauses, "(d.name ILIKE "+placeholder+" OR d.country ILIKE "+placeholder+
			" OR d.city ILIKE "+placeholder+" OR d.description ILIKE "+placeholder+")")
		params = append(params, likePattern(trimmed))
	}
	if country := strings.TrimSpace(filter.Country); country != "" {
		placeholder := fmt.Sprintf("$%d", len(params)+1)
		clauses = append(clauses, "d.country ILIKE "+placeholder)
		params = append(params, likePattern(country))
	}
	if filter.Only3D {
		clauses = append(clauses, "d.has_3d_model")
	}
	return strings.Join(clauses, " AND "), params
}

var _ ports.DestinationRepository = (*DestinationRepository)(nil)
