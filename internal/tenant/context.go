// Package tenant maintains the process-lifetime tenant registry and the
// per-request tenant binding that routes every data access to the owning
// tenant's database.
//
// The current tenant travels as an explicit context value rather than ambient
// thread-local state: two concurrent requests hold independent contexts, and a
// goroutine spawned mid-request only sees the tenant when the context is
// handed to it explicitly.
package tenant

import "context"

type tenantContextKey struct{}

// WithTenant returns a context carrying the canonical tenant id.
func WithTenant(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, tenantContextKey{}, id)
}

// FromContext extracts the current tenant id. The second return is false when
// no tenant is bound; callers that require one must treat that as a hard error,
// never fall back to a default tenant.
func FromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(tenantContextKey{}).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
