package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/media"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
	"github.com/njprem/TravelReel_BackEnd/internal/util"
)

type AccountService struct {
	accounts ports.AccountRepository
	avatars  imageUploader
}

type AccountServiceConfig struct {
	ImageBucket   string
	ImageMaxBytes int64
	Thumbnailer   media.Thumbnailer
}

type ProfileUpdateInput struct {
	Email           *string
	FirstName       *string
	LastName        *string
	Bio             *string
	Avatar          *media.Upload
	CurrentPassword *string
	NewPassword     *string
}

func NewAccountService(accounts ports.AccountRepository, storage ports.ObjectStorage, cfg AccountServiceConfig) *AccountService {
	return &AccountService{
		accounts: accounts,
		avatars: imageUploader{
			storage:     storage,
			thumbnailer: cfg.Thumbnailer,
			bucket:      cfg.ImageBucket,
			maxBytes:    cfg.ImageMaxBytes,
		},
	}
}

func (s *AccountService) Profile(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (s *AccountService) PublicProfile(ctx context.Context, username string, viewer *uuid.UUID) (*domain.PublicProfile, error) {
	profile, err := s.accounts.PublicProfile(ctx, strings.TrimSpace(username), viewer)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if viewer == nil || *viewer == profile.ID {
		profile.IsFollowing = false
	}
	return profile, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, id uuid.UUID, input ProfileUpdateInput) (*domain.Account, error) {
	account, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}

	update := domain.AccountUpdate{
		FirstName: trimmed(input.FirstName),
		LastName:  trimmed(input.LastName),
		Bio:       input.Bio,
	}
	if update.Bio != nil && len(*update.Bio) > 500 {
		return nil, fmt.Errorf("%w: bio must be at most 500 characters", ErrValidation)
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%w: email is invalid", ErrValidation)
		}
		update.Email = &email
	}

	if input.NewPassword != nil {
		if err := s.changePassword(ctx, account, input.CurrentPassword, *input.NewPassword); err != nil {
			return nil, err
		}
	}

	var avatar *storedObject
	if input.Avatar != nil {
		avatar, err = s.avatars.upload(ctx, "avatars/"+id.String(), *input.Avatar)
		if err != nil {
			return nil, err
		}
		update.AvatarURL = &avatar.url
	}

	updated, err := s.accounts.Update(ctx, id, update)
	if err != nil {
		removeObjects(ctx, s.avatars.storage, avatar)
		switch {
		case isNotFound(err):
			return nil, ErrAccountNotFound
		case isUniqueViolation(err):
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return updated, nil
}

func (s *AccountService) changePassword(ctx context.Context, account *domain.Account, current *string, next string) error {
	if len(account.PasswordHash) > 0 {
		if current == nil || !util.VerifyPassword(*current, account.PasswordSalt, account.PasswordHash) {
			return fmt.Errorf("%w: current password is incorrect", ErrValidation)
		}
	}
	if err := util.ValidatePassword(next, account.Username); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	hash, salt, err := util.DerivePassword(next)
	if err != nil {
		return err
	}
	return s.accounts.UpdatePassword(ctx, account.ID, hash, salt)
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}
