package httpapi

import (
	"context"
	"errors"
	"testing"

	"tenantgate.org/internal/auth"
	"tenantgate.org/internal/tenant"
)

// memUserStore is an in-memory auth.UserStore with the routed store's
// contract: every call needs a tenant on ctx.
type memUserStore struct {
	users map[string]map[string]*auth.User // tenant id -> username -> user
}

func (m *memUserStore) tenantUsers(ctx context.Context) (map[string]*auth.User, error) {
	id, ok := tenant.FromContext(ctx)
	if !ok {
		return nil, errors.New("mem store: tenant context not set")
	}
	users, ok := m.users[id]
	if !ok {
		return nil, errors.New("mem store: unknown tenant " + id)
	}
	return users, nil
}

func (m *memUserStore) Create(ctx context.Context, u *auth.User) error {
	users, err := m.tenantUsers(ctx)
	if err != nil {
		return err
	}
	if _, exists := users[u.Username]; exists {
		return auth.ErrAlreadyExists
	}
	users[u.Username] = u
	return nil
}

func (m *memUserStore) Find(ctx context.Context, id string) (*auth.User, error) {
	users, err := m.tenantUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (m *memUserStore) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	users, err := m.tenantUsers(ctx)
	if err != nil {
		return nil, err
	}
	u, ok := users[username]
	if !ok || !u.Enabled {
		return nil, auth.ErrNotFound
	}
	return u, nil
}

func (m *memUserStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	users, err := m.tenantUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.ID == userID {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return auth.ErrNotFound
}

func testAPI(t *testing.T, tokenOpts ...auth.TokenOption) (*API, *auth.Service, *memUserStore) {
	t.Helper()

	hash, err := auth.HashPassword("secret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	users := &memUserStore{users: map[string]map[string]*auth.User{
		"tenant-a": {
			"alice": {ID: "u-1", Username: "alice", PasswordHash: hash, TenantID: "tenant-a", Enabled: true},
		},
		"tenant-b": {
			"bob": {ID: "u-2", Username: "bob", PasswordHash: hash, TenantID: "tenant-b", Enabled: true},
		},
	}}

	registry, err := tenant.NewRegistry(map[string]tenant.Config{
		"tenant-a": {URL: "postgres://localhost/a"},
		"tenant-b": {URL: "postgres://localhost/b"},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	tokens, err := auth.NewTokenProvider("test-secret-key-long-enough-for-hs256", tokenOpts...)
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}
	svc := auth.NewService(users, tokens, registry)
	return New(svc, ReadyProbe{}, "test"), svc, users
}

func issueToken(t *testing.T, svc *auth.Service, username, password, tenantID string) string {
	t.Helper()
	result, err := svc.Login(context.Background(), username, password, tenantID)
	if err != nil {
		t.Fatalf("Login(%s, %s): %v", username, tenantID, err)
	}
	return result.Token
}
