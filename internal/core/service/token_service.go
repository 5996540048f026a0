package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// SessionTTL is the fixed lifetime of an issued token.
const SessionTTL = 7 * 24 * time.Hour

var errEmptySecret = errors.New("token service: signing secret is empty")

// TokenConfig configures a TokenService. Now defaults to time.Now.
type TokenConfig struct {
	Secret string
	Now    func() time.Time
}

// sessionClaims is the signed token payload.
type sessionClaims struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens. It holds no state
// beyond the signing secret; issued tokens are not tracked and cannot be
// revoked.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

func NewTokenService(cfg *TokenConfig) (*TokenService, error) {
	if cfg == nil || cfg.Secret == "" {
		return nil, errEmptySecret
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &TokenService{secret: []byte(cfg.Secret), now: now}, nil
}

// Issue signs a token carrying the user's id, username and role.
func (s *TokenService) Issue(user *domain.User) (string, error) {
	issuedAt := s.now()
	claims := sessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(SessionTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify returns the identity in token. Any parse, signature, algorithm or
// expiry failure yields ok == false.
func (s *TokenService) Verify(token string) (domain.Identity, bool) {
	if token == "" {
		return domain.Identity{}, false
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return domain.Identity{}, false
	}
	if claims.UserID == "" || !domain.IsValidRole(claims.Role) {
		return domain.Identity{}, false
	}

	return domain.Identity{ID: claims.UserID, Username: claims.Username, Role: claims.Role}, true
}
