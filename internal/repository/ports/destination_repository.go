package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
)

type DestinationRepository interface {
	Create(ctx context.Context, input domain.DestinationCreate) (*domain.Destination, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Destination, error)
	List(ctx context.Context, filter domain.DestinationListFilter) ([]domain.Destination, int64, error)
}

type TrendingRepository interface {
	// Activity returns one row per destination, including idle ones.
	Activity(ctx context.Context, dayStart, weekStart time.Time) ([]domain.DestinationActivity, error)
	Upsert(ctx context.Context, rows []domain.TrendingDestination) error
	List(ctx context.Context, limit, offset int) ([]domain.TrendingDestination, error)
	Count(ctx context.Context) (int64, error)
}
