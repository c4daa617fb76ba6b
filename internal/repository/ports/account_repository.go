package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
)

type AccountRepository interface {
	Create(ctx context.Context, input domain.AccountCreate) (*domain.Account, error)
	UpsertGoogle(ctx context.Context, email, username, firstName, lastName string, avatarURL *string) (*domain.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	Update(ctx context.Context, id uuid.UUID, update domain.AccountUpdate) (*domain.Account, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error
	// PublicProfile resolves is_following against viewer when viewer is not nil.
	PublicProfile(ctx context.Context, username string, viewer *uuid.UUID) (*domain.PublicProfile, error)
}
