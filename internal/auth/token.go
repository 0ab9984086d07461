package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultIssuer   = "tenantgate"
	defaultTokenTTL = time.Hour
)

// Claims binds a user identity to a tenant inside a signed token. The token is
// the only session state: nothing is stored server-side.
type Claims struct {
	Tenant string `json:"tenant"`
	jwt.RegisteredClaims
}

// TokenProvider issues and verifies HS256-signed tokens carrying Claims.
// Verification is pure and stateless; a provider is safe for concurrent use.
type TokenProvider struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption configures a TokenProvider.
type TokenOption func(*TokenProvider) error

// WithIssuer overrides the issuer claim.
func WithIssuer(issuer string) TokenOption {
	return func(p *TokenProvider) error {
		issuer = strings.TrimSpace(issuer)
		if issuer == "" {
			return errors.New("auth: issuer must not be blank")
		}
		p.issuer = issuer
		return nil
	}
}

// WithTokenTTL configures token lifetime. Negative values are accepted so
// tests can mint already-expired tokens.
func WithTokenTTL(ttl time.Duration) TokenOption {
	return func(p *TokenProvider) error {
		if ttl == 0 {
			return errors.New("auth: token ttl must not be zero")
		}
		p.ttl = ttl
		return nil
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) TokenOption {
	return func(p *TokenProvider) error {
		if fn != nil {
			p.now = fn
		}
		return nil
	}
}

// NewTokenProvider constructs a provider around the shared signing secret.
func NewTokenProvider(secret string, opts ...TokenOption) (*TokenProvider, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: signing secret is not configured")
	}
	p := &TokenProvider{
		secret: []byte(secret),
		issuer: defaultIssuer,
		ttl:    defaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Issue signs a token binding username to tenantID. The jti claim makes any
// two issued tokens distinct even at identical timestamps.
func (p *TokenProvider) Issue(username, tenantID string) (string, time.Time, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", time.Time{}, errors.New("auth: username is required")
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return "", time.Time{}, errors.New("auth: tenant is required")
	}

	now := p.now().UTC()
	expiresAt := now.Add(p.ttl)
	claims := Claims{
		Tenant: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature and required claims and reconstructs Claims.
// Nothing in the payload is trusted before the signature check passes.
func (p *TokenProvider) Verify(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if err := p.validateClaims(claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (p *TokenProvider) validateClaims(claims *Claims) error {
	if claims.Issuer != p.issuer {
		return fmt.Errorf("unexpected issuer: %s", claims.Issuer)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return errors.New("subject missing")
	}
	if strings.TrimSpace(claims.Tenant) == "" {
		return errors.New("tenant missing")
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return errors.New("timestamps missing")
	}
	now := p.now().UTC()
	// Allow a small clock skew of 5 seconds when validating issued-at.
	if claims.IssuedAt.Time.After(now.Add(5 * time.Second)) {
		return errors.New("token issued in the future")
	}
	if claims.ExpiresAt.Time.Before(claims.IssuedAt.Time) {
		return errors.New("token expiry precedes issued-at")
	}
	return nil
}
