package ports

import (
	"context"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// RegisterInput carries a registration request. An empty Role means
// domain.RoleUser. bcrypt only accepts passwords of up to 72 bytes.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=user admin"`
}

// LoginInput carries a login request.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is a freshly issued session.
type AuthResult struct {
	Token string
	User  *domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	// CurrentUser resolves the stored user behind a verified identity.
	CurrentUser(ctx context.Context, id domain.Identity) (*domain.User, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

// TokenVerifier checks session tokens. Verify never fails loudly: any
// malformed, expired or forged token simply yields ok == false.
type TokenVerifier interface {
	Verify(token string) (identity domain.Identity, ok bool)
}
