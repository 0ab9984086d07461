package tenant

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrTenantRequired indicates that no tenant identifier was supplied.
	ErrTenantRequired = errors.New("tenant: tenant is required")
	// ErrInvalidTenant indicates the supplied tenant is not registered.
	ErrInvalidTenant = errors.New("tenant: invalid tenant")
)

// Config holds the connection parameters for one tenant's physical database.
type Config struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Driver   string `yaml:"driver"`
}

// Registry is the immutable tenant-id to Config mapping built once at startup.
// Keys are normalized (trimmed, lower-cased) at build time; the registry is
// read-only afterwards and safe for concurrent use without locking.
type Registry struct {
	configs map[string]Config
	order   []string
}

// NewRegistry builds a registry from the configured tenant set. An empty set is
// a startup error: the process must refuse to run without at least one tenant.
func NewRegistry(tenants map[string]Config) (*Registry, error) {
	if len(tenants) == 0 {
		return nil, errors.New("tenant: at least one tenant must be configured")
	}
	configs := make(map[string]Config, len(tenants))
	order := make([]string, 0, len(tenants))
	for id, cfg := range tenants {
		normalized := normalize(id)
		if normalized == "" {
			return nil, errors.New("tenant: tenant id must not be blank")
		}
		if _, exists := configs[normalized]; exists {
			return nil, errors.New("tenant: duplicate tenant id " + normalized)
		}
		configs[normalized] = cfg
		order = append(order, normalized)
	}
	sort.Strings(order)
	return &Registry{configs: configs, order: order}, nil
}

// Resolve normalizes candidate and validates it against the registry key set.
// It returns the canonical tenant id, ErrTenantRequired for a blank candidate,
// or ErrInvalidTenant for an unregistered one. Pure: no side effects.
func (r *Registry) Resolve(candidate string) (string, error) {
	normalized := normalize(candidate)
	if normalized == "" {
		return "", ErrTenantRequired
	}
	if _, ok := r.configs[normalized]; !ok {
		return "", ErrInvalidTenant
	}
	return normalized, nil
}

// Config returns the connection parameters for a canonical tenant id.
func (r *Registry) Config(id string) (Config, bool) {
	cfg, ok := r.configs[id]
	return cfg, ok
}

// IDs returns the canonical tenant ids in deterministic (sorted) order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len reports the number of registered tenants.
func (r *Registry) Len() int {
	return len(r.configs)
}

func normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
