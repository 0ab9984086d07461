package auth

import (
	"context"
	"time"
)

// User is an account living inside exactly one tenant's database.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	TenantID     string
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserStore describes the persistence operations the auth subsystem needs.
// Implementations route every call through the tenant bound on ctx.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	// FindByUsername returns only enabled users; disabled accounts are
	// indistinguishable from absent ones.
	FindByUsername(ctx context.Context, username string) (*User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}
