package domain

import "errors"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// User models an account that can authenticate against the shop.
// Users are created on registration and never mutated afterwards.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
