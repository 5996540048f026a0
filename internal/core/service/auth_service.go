package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
	"github.com/sweetshop/sweetshop-api/internal/pkg/metrics"
	"github.com/sweetshop/sweetshop-api/internal/pkg/validation"
)

const passwordHashCost = 10

// AuthService implements registration and login.
type AuthService struct {
	repo      ports.UserRepository
	tokens    ports.TokenIssuer
	validator *validation.Validator
	logger    zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenIssuer, v *validation.Validator, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, validator: v, logger: logger}
}

// Register creates a user and opens a session for it. The username check
// runs before hashing; the store's unique index catches a concurrent
// registration of the same name.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}

	_, err := s.repo.FindByUsername(ctx, in.Username)
	switch {
	case err == nil:
		metrics.AuthAttemptsTotal.WithLabelValues("register", "conflict").Inc()
		return nil, domain.ErrUserExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("register: lookup username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), passwordHashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, domain.NewValidationError(domain.FieldError{
			Field:   "password",
			Message: "password must be at most 72 bytes",
		})
	}
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Username:     in.Username,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.AuthAttemptsTotal.WithLabelValues("register", "conflict").Inc()
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.tokens.Issue(created)
	if err != nil {
		return nil, fmt.Errorf("register: issue token: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	s.logger.Info().Str("user_id", created.ID).Str("username", created.Username).Str("role", created.Role).Msg("user registered")

	return &ports.AuthResult{Token: token, User: created}, nil
}

// Login checks the credentials and opens a session. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.AuthAttemptsTotal.WithLabelValues("login", "rejected").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "rejected").Inc()
		s.logger.Debug().Str("username", in.Username).Msg("login rejected")
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	return &ports.AuthResult{Token: token, User: user}, nil
}

// CurrentUser loads the user a verified token refers to. A token whose
// user no longer exists is treated as invalid.
func (s *AuthService) CurrentUser(ctx context.Context, id domain.Identity) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("current user: %w", err)
	}
	return user, nil
}
