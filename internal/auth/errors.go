package auth

import "errors"

var (
	// ErrInvalidToken indicates the token failed decoding, signature, or
	// structural validation.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrTokenExpired indicates a well-formed, correctly signed token whose
	// expiry has passed.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrInvalidCredentials covers unknown username, wrong password, and
	// tenant mismatch alike so that rejections cannot be used to enumerate
	// accounts or tenant membership.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrUnauthorized indicates a request without a valid authenticated
	// principal.
	ErrUnauthorized = errors.New("auth: unauthorized")
	// ErrNotFound indicates a missing user record.
	ErrNotFound = errors.New("auth: not found")
	// ErrAlreadyExists indicates a unique constraint violation on create.
	ErrAlreadyExists = errors.New("auth: already exists")
)

// errTenantMismatch marks a user record whose tenant does not match the tenant
// a token or login request claimed. Kept unexported: callers surface it as
// ErrInvalidCredentials, only logs and audit see the distinction.
var errTenantMismatch = errors.New("auth: tenant mismatch")
