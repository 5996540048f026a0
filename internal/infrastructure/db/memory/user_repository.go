package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// UserRepository keeps users keyed by username.
type UserRepository struct {
	mu         sync.RWMutex
	byUsername map[string]domain.User
	byID       map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byUsername: make(map[string]domain.User),
		byID:       make(map[string]string),
	}
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	username, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := r.byUsername[username]
	return &u, nil
}

// Create checks and inserts under one write lock, so of two racing
// registrations for the same name exactly one wins.
func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	u := *user
	u.ID = uuid.NewString()
	r.byUsername[u.Username] = u
	r.byID[u.ID] = u.Username
	return &u, nil
}
