// Package auth implements stateless session tokens bound to a tenant and the
// credential checks that issue them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tenantgate.org/internal/tenant"
)

// Service validates login credentials against the tenant-routed user store and
// issues signed tokens.
type Service struct {
	users    UserStore
	tokens   *TokenProvider
	registry *tenant.Registry
	verify   PasswordVerifier
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithPasswordVerifier swaps the password scheme. Defaults to bcrypt.
func WithPasswordVerifier(fn PasswordVerifier) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.verify = fn
		}
	}
}

// NewService constructs the authentication service.
func NewService(users UserStore, tokens *TokenProvider, registry *tenant.Registry, opts ...ServiceOption) *Service {
	s := &Service{
		users:    users,
		tokens:   tokens,
		registry: registry,
		verify:   VerifyPassword,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Username  string
	Tenant    string
}

// Login resolves the requested tenant, looks the user up inside that tenant's
// store, verifies the password and the user's tenant binding, and issues a
// token. Unknown username, wrong password, and a user belonging to a different
// tenant all come back as ErrInvalidCredentials; the underlying cause is
// wrapped for internal logging but must never reach the client. The tenant
// binding used for the lookup is scoped to this call and cannot outlive it.
func (s *Service) Login(ctx context.Context, username, password, requestedTenant string) (LoginResult, error) {
	tenantID, err := s.registry.Resolve(requestedTenant)
	if err != nil {
		return LoginResult{}, err
	}

	var result LoginResult
	err = tenant.Scope(ctx, tenantID, func(ctx context.Context) error {
		user, err := s.users.FindByUsername(ctx, username)
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: unknown or disabled user", ErrInvalidCredentials)
		}
		if err != nil {
			return fmt.Errorf("auth: user lookup: %w", err)
		}
		if err := s.verify(user.PasswordHash, password); err != nil {
			return fmt.Errorf("%w: password verification failed", ErrInvalidCredentials)
		}
		// Defense in depth: a record routed from the wrong tenant store must
		// never authenticate, even though the routed lookup makes this
		// unreachable in practice.
		if user.TenantID != tenantID {
			return fmt.Errorf("%w: %v: user=%s token_tenant=%s user_tenant=%s",
				ErrInvalidCredentials, errTenantMismatch, user.Username, tenantID, user.TenantID)
		}

		token, expiresAt, err := s.tokens.Issue(user.Username, tenantID)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		result = LoginResult{
			Token:     token,
			ExpiresAt: expiresAt,
			Username:  user.Username,
			Tenant:    tenantID,
		}
		return nil
	})
	if err != nil {
		return LoginResult{}, err
	}
	return result, nil
}

// Authenticate verifies a bearer token against the tenant-routed user store
// and returns the principal it identifies. Used by the request filter: the
// claims' tenant is resolved, the user is looked up inside that tenant scope,
// and the user's recorded tenant must match the claim.
func (s *Service) Authenticate(ctx context.Context, token string) (Principal, string, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return Principal{}, "", err
	}
	tenantID, err := s.registry.Resolve(claims.Tenant)
	if err != nil {
		return Principal{}, "", fmt.Errorf("%w: claimed tenant rejected: %v", ErrUnauthorized, err)
	}

	var principal Principal
	err = tenant.Scope(ctx, tenantID, func(ctx context.Context) error {
		user, err := s.users.FindByUsername(ctx, claims.Subject)
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: unknown or disabled subject", ErrUnauthorized)
		}
		if err != nil {
			return fmt.Errorf("auth: subject lookup: %w", err)
		}
		if user.TenantID != tenantID {
			return fmt.Errorf("%w: %v: user=%s token_tenant=%s user_tenant=%s",
				ErrUnauthorized, errTenantMismatch, user.Username, tenantID, user.TenantID)
		}
		principal = Principal{UserID: user.ID, Username: user.Username, TenantID: tenantID}
		return nil
	})
	if err != nil {
		return Principal{}, "", err
	}
	return principal, tenantID, nil
}
