// Package store provides the tenant-routed database layer: one physical
// connection pool per registered tenant, selected per operation from the
// tenant bound on the request context.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"tenantgate.org/internal/tenant"
)

var (
	// ErrTenantContextNotSet indicates a data access was attempted outside a
	// unit of work that bound a tenant. This is an ordering bug in the caller
	// and is never recovered by picking a default tenant.
	ErrTenantContextNotSet = errors.New("store: tenant context not set")
	// ErrUnknownTenant indicates the bound tenant has no registered handle.
	ErrUnknownTenant = errors.New("store: unknown tenant")
)

const defaultDriver = "pgx"

// Router owns one *sql.DB per tenant. Handles are built eagerly at startup in
// registry order and never rebuilt, swapped, or removed while the process
// runs; the map is read-only after Open and needs no locking.
type Router struct {
	handles map[string]*sql.DB
	order   []string
}

// Open constructs every tenant handle from the registry and verifies
// connectivity. Failure for any tenant is fatal: the partially built handles
// are closed and the error is returned so startup can abort.
func Open(ctx context.Context, reg *tenant.Registry) (*Router, error) {
	r := &Router{handles: make(map[string]*sql.DB, reg.Len())}
	for _, id := range reg.IDs() {
		cfg, _ := reg.Config(id)
		db, err := openHandle(ctx, cfg)
		if err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("store: open handle for tenant %s: %w", id, err)
		}
		r.handles[id] = db
		r.order = append(r.order, id)
	}
	return r, nil
}

// NewRouter assembles a router from pre-opened handles. Used by tests and by
// callers that manage pool construction themselves. Handles are ordered by
// tenant id so Ping visits them deterministically, same as after Open.
func NewRouter(handles map[string]*sql.DB) *Router {
	r := &Router{handles: make(map[string]*sql.DB, len(handles))}
	for id, db := range handles {
		r.handles[id] = db
		r.order = append(r.order, id)
	}
	sort.Strings(r.order)
	return r
}

// DB returns the physical handle for the tenant bound on ctx.
func (r *Router) DB(ctx context.Context) (*sql.DB, error) {
	id, ok := tenant.FromContext(ctx)
	if !ok {
		return nil, ErrTenantContextNotSet
	}
	db, ok := r.handles[id]
	if !ok {
		// Unreachable when the id came through the resolver, but routing to
		// the wrong pool would be a data-isolation breach, so check anyway.
		return nil, fmt.Errorf("%w: %s", ErrUnknownTenant, id)
	}
	return db, nil
}

// Ping checks connectivity of every tenant handle. Used by the readiness probe.
func (r *Router) Ping(ctx context.Context) error {
	for _, id := range r.order {
		if err := r.handles[id].PingContext(ctx); err != nil {
			return fmt.Errorf("store: ping tenant %s: %w", id, err)
		}
	}
	return nil
}

// Close releases all tenant handles.
func (r *Router) Close() error {
	var firstErr error
	for _, db := range r.handles {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func openHandle(ctx context.Context, cfg tenant.Config) (*sql.DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = defaultDriver
	}
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func buildDSN(cfg tenant.Config) (string, error) {
	if cfg.URL == "" {
		return "", errors.New("store: tenant url is required")
	}
	if cfg.Username == "" {
		return cfg.URL, nil
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return "", fmt.Errorf("store: parse tenant url: %w", err)
	}
	if cfg.Password != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	} else {
		u.User = url.User(cfg.Username)
	}
	return u.String(), nil
}
