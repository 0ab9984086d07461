// Package bootstrap seeds configured accounts at startup so a fresh
// deployment has something to log in with.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tenantgate.org/internal/auth"
	"tenantgate.org/internal/config"
	"tenantgate.org/internal/obs"
	"tenantgate.org/internal/tenant"
)

// Seed creates each configured user inside its tenant unless an account with
// the same username already exists there. Existing accounts are left
// untouched, so Seed is safe to run on every start. A failure for one user is
// logged and does not block the others; the first error is returned so the
// caller can decide whether to treat it as fatal.
func Seed(ctx context.Context, users auth.UserStore, reg *tenant.Registry, cfg config.BootstrapConfig) error {
	var firstErr error
	for _, u := range cfg.Users {
		if err := seedOne(ctx, users, reg, u); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			obs.LogRequest(map[string]any{
				"ts":       time.Now().UTC().Format(time.RFC3339Nano),
				"level":    "error",
				"msg":      "bootstrap user failed",
				"username": u.Username,
				"tenant":   u.Tenant,
				"error":    err.Error(),
			})
			continue
		}
	}
	return firstErr
}

func seedOne(ctx context.Context, users auth.UserStore, reg *tenant.Registry, u config.BootstrapUser) error {
	id, err := reg.Resolve(u.Tenant)
	if err != nil {
		return fmt.Errorf("bootstrap: tenant %q: %w", u.Tenant, err)
	}
	return tenant.Scope(ctx, id, func(ctx context.Context) error {
		_, err := users.FindByUsername(ctx, u.Username)
		if err == nil {
			return nil
		}
		if !errors.Is(err, auth.ErrNotFound) {
			return fmt.Errorf("bootstrap: lookup %s: %w", u.Username, err)
		}
		hash, err := auth.HashPassword(u.Password)
		if err != nil {
			return fmt.Errorf("bootstrap: hash password for %s: %w", u.Username, err)
		}
		created := &auth.User{
			Username:     u.Username,
			PasswordHash: hash,
			TenantID:     id,
			Enabled:      true,
		}
		if err := users.Create(ctx, created); err != nil {
			if errors.Is(err, auth.ErrAlreadyExists) {
				return nil
			}
			return fmt.Errorf("bootstrap: create %s: %w", u.Username, err)
		}
		obs.LogRequest(map[string]any{
			"ts":       time.Now().UTC().Format(time.RFC3339Nano),
			"level":    "info",
			"msg":      "bootstrap user created",
			"username": u.Username,
			"tenant":   id,
		})
		return nil
	})
}
