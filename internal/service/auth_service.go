package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"google.golang.org/api/idtoken"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
	"github.com/njprem/TravelReel_BackEnd/internal/util"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("authentication required")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidGoogleToken = errors.New("invalid google token")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,30}$`)

type GoogleVerifier func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

type AuthService struct {
	accounts ports.AccountRepository
	sessions ports.SessionRepository
	jwt      *util.JWTManager
	audience string
	verify   GoogleVerifier
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Bio       string
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *domain.Account
}

func NewAuthService(accounts ports.AccountRepository, sessions ports.SessionRepository, jwt *util.JWTManager, googleAudience string) *AuthService {
	return &AuthService{
		accounts: accounts,
		sessions: sessions,
		jwt:      jwt,
		audience: googleAudience,
		verify:   idtoken.Validate,
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !usernamePattern.MatchString(username) {
		return nil, fmt.Errorf("%w: username must be 3-30 letters, digits, '_' or '.'", ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is invalid", ErrValidation)
	}
	if len(input.Bio) > 500 {
		return nil, fmt.Errorf("%w: bio must be at most 500 characters", ErrValidation)
	}
	if err := util.ValidatePassword(input.Password, username); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	hash, salt, err := util.DerivePassword(input.Password)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.Create(ctx, domain.AccountCreate{
		Username:     username,
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Bio:          input.Bio,
		PasswordHash: hash,
		PasswordSalt: salt,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, uniqueAccountError(err)
		}
		return nil, err
	}
	return s.issue(ctx, account)
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	account, err := s.accounts.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !util.VerifyPassword(password, account.PasswordSalt, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, account)
}

func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*AuthResult, error) {
	payload, err := s.verify(ctx, idToken, s.audience)
	if err != nil {
		return nil, ErrInvalidGoogleToken
	}
	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, ErrInvalidGoogleToken
	}
	email = strings.ToLower(email)
	firstName, _ := payload.Claims["given_name"].(string)
	lastName, _ := payload.Claims["family_name"].(string)
	var avatar *string
	if picture, ok := payload.Claims["picture"].(string); ok && picture != "" {
		avatar = &picture
	}

	username := util.UsernameFromEmail(email)
	if existing, err := s.accounts.FindByEmail(ctx, email); err == nil {
		username = existing.Username
	} else if !isNotFound(err) {
		return nil, err
	} else if username, err = s.availableUsername(ctx, username); err != nil {
		return nil, err
	}

	account, err := s.accounts.UpsertGoogle(ctx, email, username, firstName, lastName, avatar)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, uniqueAccountError(err)
		}
		return nil, err
	}
	return s.issue(ctx, account)
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrUnauthorized
	}
	return s.sessions.DeactivateSession(ctx, token)
}

// Authenticate resolves a bearer token to its account; the session must still
// be active.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Account, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	session, err := s.sessions.FindActiveSession(ctx, token)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if session.UserID != claims.UserID {
		return nil, ErrUnauthorized
	}
	account, err := s.accounts.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return account, nil
}

func (s *AuthService) issue(ctx context.Context, account *domain.Account) (*AuthResult, error) {
	token, expiresAt, err := s.jwt.Generate(account.ID, account.Username)
	if err != nil {
		return nil, err
	}
	if _, err := s.sessions.CreateSession(ctx, account.ID, token, expiresAt); err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

func (s *AuthService) availableUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for attempt := 0; attempt < 5; attempt++ {
		_, err := s.accounts.FindByUsername(ctx, candidate)
		if isNotFound(err) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		suffix, err := util.RandomDigits(4)
		if err != nil {
			return "", err
		}
		candidate = base + suffix
	}
	return "", ErrUsernameTaken
}

func uniqueAccountError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.Contains(pgErr.ConstraintName, "email") {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}
