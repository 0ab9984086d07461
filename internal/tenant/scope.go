package tenant

import "context"

// Scope runs fn with the tenant bound on a derived context. The binding lives
// only on that derived context, so it cannot leak past the call on any exit
// path, panics included. Unit-of-work code that needs a tenant
// for a bounded stretch (login lookup, seeding) should go through Scope instead
// of calling WithTenant directly.
func Scope(ctx context.Context, id string, fn func(ctx context.Context) error) error {
	return fn(WithTenant(ctx, id))
}
