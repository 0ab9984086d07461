package bootstrap

import (
	"context"
	"errors"
	"testing"

	"tenantgate.org/internal/auth"
	"tenantgate.org/internal/config"
	"tenantgate.org/internal/tenant"
)

type memStore struct {
	users map[string]map[string]*auth.User // tenant -> username -> user
}

func newMemStore() *memStore {
	return &memStore{users: map[string]map[string]*auth.User{}}
}

func (s *memStore) tenantOf(ctx context.Context) (string, error) {
	id, ok := tenant.FromContext(ctx)
	if !ok {
		return "", errors.New("no tenant bound")
	}
	return id, nil
}

func (s *memStore) Create(ctx context.Context, u *auth.User) error {
	id, err := s.tenantOf(ctx)
	if err != nil {
		return err
	}
	if s.users[id] == nil {
		s.users[id] = map[string]*auth.User{}
	}
	if _, ok := s.users[id][u.Username]; ok {
		return auth.ErrAlreadyExists
	}
	s.users[id][u.Username] = u
	return nil
}

func (s *memStore) Find(ctx context.Context, userID string) (*auth.User, error) {
	id, err := s.tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range s.users[id] {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (s *memStore) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	id, err := s.tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	if u, ok := s.users[id][username]; ok {
		return u, nil
	}
	return nil, auth.ErrNotFound
}

func (s *memStore) UpdatePassword(ctx context.Context, userID, hash string) error {
	u, err := s.Find(ctx, userID)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func testRegistry(t *testing.T) *tenant.Registry {
	t.Helper()
	reg, err := tenant.NewRegistry(map[string]tenant.Config{
		"tenant-a": {URL: "postgres://localhost/a"},
		"tenant-b": {URL: "postgres://localhost/b"},
	})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

func TestSeedCreatesMissingUsers(t *testing.T) {
	store := newMemStore()
	cfg := config.BootstrapConfig{Users: []config.BootstrapUser{
		{Username: "alice", Password: "pw-a", Tenant: "Tenant-A"},
		{Username: "bob", Password: "pw-b", Tenant: "tenant-b"},
	}}

	if err := Seed(context.Background(), store, testRegistry(t), cfg); err != nil {
		t.Fatalf("seed: %v", err)
	}

	a := store.users["tenant-a"]["alice"]
	if a == nil {
		t.Fatalf("alice not created in tenant-a")
	}
	if a.TenantID != "tenant-a" || !a.Enabled {
		t.Fatalf("unexpected alice record: %+v", a)
	}
	if a.PasswordHash == "pw-a" || a.PasswordHash == "" {
		t.Fatalf("password stored without hashing")
	}
	if err := auth.VerifyPassword(a.PasswordHash, "pw-a"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if store.users["tenant-b"]["bob"] == nil {
		t.Fatalf("bob not created in tenant-b")
	}
	if store.users["tenant-a"]["bob"] != nil {
		t.Fatalf("bob leaked into tenant-a")
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	store := newMemStore()
	cfg := config.BootstrapConfig{Users: []config.BootstrapUser{
		{Username: "alice", Password: "pw-a", Tenant: "tenant-a"},
	}}
	reg := testRegistry(t)

	if err := Seed(context.Background(), store, reg, cfg); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	first := store.users["tenant-a"]["alice"]

	if err := Seed(context.Background(), store, reg, cfg); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if store.users["tenant-a"]["alice"] != first {
		t.Fatalf("second seed replaced the existing account")
	}
}

func TestSeedContinuesPastFailures(t *testing.T) {
	store := newMemStore()
	cfg := config.BootstrapConfig{Users: []config.BootstrapUser{
		{Username: "ghost", Password: "pw", Tenant: "no-such-tenant"},
		{Username: "alice", Password: "pw-a", Tenant: "tenant-a"},
	}}

	err := Seed(context.Background(), store, testRegistry(t), cfg)
	if err == nil {
		t.Fatalf("expected error for unknown tenant")
	}
	if !errors.Is(err, tenant.ErrInvalidTenant) {
		t.Fatalf("expected invalid tenant error, got %v", err)
	}
	if store.users["tenant-a"]["alice"] == nil {
		t.Fatalf("later users should still be seeded")
	}
}
