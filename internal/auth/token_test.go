package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	p, err := NewTokenProvider("test-secret-key-long-enough-for-hs256")
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}

	token, expiresAt, err := p.Issue("alice", "tenant-a")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if len(strings.Split(token, ".")) != 3 {
		t.Fatalf("expected compact three-segment token, got %q", token)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}

	claims, err := p.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Tenant != "tenant-a" {
		t.Fatalf("unexpected tenant: %s", claims.Tenant)
	}
}

func TestIssueProducesDistinctTokens(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p, err := NewTokenProvider("test-secret-key-long-enough-for-hs256",
		WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}

	// Same subject, tenant, and instant: the jti must still differ.
	first, _, err := p.Issue("alice", "tenant-a")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	second, _, err := p.Issue("alice", "tenant-a")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct tokens for repeated issuance")
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	p, err := NewTokenProvider("test-secret-key-long-enough-for-hs256")
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}
	token, _, err := p.Issue("alice", "tenant-a")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	last := token[len(token)-1]
	flipped := byte('A')
	if last == 'A' {
		flipped = 'B'
	}
	tampered := token[:len(token)-1] + string(flipped)

	if _, err := p.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	p, err := NewTokenProvider("test-secret-key-long-enough-for-hs256")
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}
	for _, token := range []string{"", "   ", "not-a-token", "a.b", "a.b.c.d", "invalid.jwt.token"} {
		if _, err := p.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify(%q) = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	p, err := NewTokenProvider("test-secret-key-long-enough-for-hs256",
		WithTokenTTL(-time.Second))
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}
	token, _, err := p.Issue("alice", "tenant-a")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := p.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	issuerSide, err := NewTokenProvider("issuer-secret-key-long-enough-for-hs256")
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}
	verifierSide, err := NewTokenProvider("another-secret-key-long-enough-for-hs256")
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}

	token, _, err := issuerSide.Issue("alice", "tenant-a")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifierSide.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsForeignIssuer(t *testing.T) {
	issuerSide, err := NewTokenProvider("test-secret-key-long-enough-for-hs256",
		WithIssuer("someone-else"))
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}
	verifierSide, err := NewTokenProvider("test-secret-key-long-enough-for-hs256")
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}

	token, _, err := issuerSide.Issue("alice", "tenant-a")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifierSide.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssueValidatesInputs(t *testing.T) {
	p, err := NewTokenProvider("test-secret-key-long-enough-for-hs256")
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}
	if _, _, err := p.Issue("", "tenant-a"); err == nil {
		t.Fatalf("expected error for blank username")
	}
	if _, _, err := p.Issue("alice", "  "); err == nil {
		t.Fatalf("expected error for blank tenant")
	}
}

func TestNewTokenProviderRequiresSecret(t *testing.T) {
	if _, err := NewTokenProvider("  "); err == nil {
		t.Fatalf("expected error for blank secret")
	}
}
