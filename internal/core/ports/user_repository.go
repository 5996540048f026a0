package ports

import (
	"context"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// FindByUsername returns domain.ErrUserNotFound when no user has that name.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByID returns domain.ErrUserNotFound for unknown or malformed ids.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Create stores user and returns it with its generated ID. A username
	// that already exists yields domain.ErrUserExists, including when two
	// registrations race past the service's pre-check.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
