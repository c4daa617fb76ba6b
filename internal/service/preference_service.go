package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
)

type PreferenceService struct {
	prefs ports.PreferenceRepository
}

func NewPreferenceService(prefs ports.PreferenceRepository) *PreferenceService {
	return &PreferenceService{prefs: prefs}
}

// Get returns the stored preferences, creating the defaults on first access.
func (s *PreferenceService) Get(ctx context.Context, userID uuid.UUID) (*domain.UserPreference, error) {
	pref, err := s.prefs.Get(ctx, userID)
	if err == nil {
		return pref, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	return s.prefs.Save(ctx, domain.DefaultPreference(userID))
}

func (s *PreferenceService) Update(ctx context.Context, userID uuid.UUID, update domain.PreferenceUpdate) (*domain.UserPreference, error) {
	pref, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	update.Apply(pref)
	saved, err := s.prefs.Save(ctx, *pref)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: unknown destination or tag", ErrValidation)
		}
		return nil, err
	}
	return saved, nil
}
