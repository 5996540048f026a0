package domain

import "context"

// Identity is the authenticated caller as carried by a session token.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the identity holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// IdentityOf returns the identity a token issued for u would carry.
func IdentityOf(u *User) Identity {
	return Identity{ID: u.ID, Username: u.Username, Role: u.Role}
}

type identityKey struct{}

// WithIdentity attaches the authenticated caller to ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller attached by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// ActorName returns the username attached to ctx, or "anonymous".
func ActorName(ctx context.Context) string {
	if id, ok := IdentityFromContext(ctx); ok && id.Username != "" {
		return id.Username
	}
	return "anonymous"
}
