package token

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/quiniela/internal/domain/user"
	"github.com/riskibarqy/quiniela/internal/usecase"
	"golang.org/x/crypto/bcrypt"
)

func newTestIssuer(t *testing.T, now time.Time) *Issuer {
	t.Helper()

	issuer, err := NewIssuer(Config{
		Secret:     "test-secret",
		Issuer:     "quiniela",
		AccessTTL:  time.Hour,
		RefreshTTL: 48 * time.Hour,
	})
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	issuer.now = func() time.Time { return now }
	return issuer
}

func TestIssuer_IssueAndVerify(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	issuer := newTestIssuer(t, now)

	pair, err := issuer.Issue(ctx, user.Principal{UserID: 7, Username: "ana", IsStaff: true})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !pair.AccessExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected access expiry: %s", pair.AccessExpiresAt)
	}
	if !pair.RefreshExpiresAt.Equal(now.Add(48 * time.Hour)) {
		t.Fatalf("unexpected refresh expiry: %s", pair.RefreshExpiresAt)
	}

	principal, err := issuer.VerifyAccess(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if principal.UserID != 7 || principal.Username != "ana" || !principal.IsStaff {
		t.Fatalf("unexpected principal: %+v", principal)
	}

	if _, err := issuer.VerifyRefresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
}

func TestIssuer_RejectsWrongTokenType(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	issuer := newTestIssuer(t, time.Now().UTC())
	pair, err := issuer.Issue(ctx, user.Principal{UserID: 1, Username: "bob"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := issuer.VerifyAccess(ctx, pair.RefreshToken); !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected refresh token to be rejected as access, got %v", err)
	}
	if _, err := issuer.VerifyRefresh(ctx, pair.AccessToken); !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected access token to be rejected as refresh, got %v", err)
	}
}

func TestIssuer_RejectsExpiredAndForeignTokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	issuedAt := time.Now().UTC().Add(-3 * time.Hour)
	issuer := newTestIssuer(t, issuedAt)
	pair, err := issuer.Issue(ctx, user.Principal{UserID: 1, Username: "bob"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	issuer.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	_, err = issuer.VerifyAccess(ctx, pair.AccessToken)
	if !errors.Is(err, usecase.ErrUnauthorized) || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expired token error, got %v", err)
	}

	other, err := NewIssuer(Config{Secret: "other-secret", Issuer: "quiniela"})
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	if _, err := other.VerifyRefresh(ctx, pair.RefreshToken); !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected signature mismatch to be unauthorized, got %v", err)
	}

	if _, err := issuer.VerifyAccess(ctx, "  "); !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected empty token to be unauthorized, got %v", err)
	}
}

func TestNewIssuer_RequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewIssuer(Config{}); err == nil {
		t.Fatalf("expected error for missing secret")
	}
}

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("correct-horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct-horse" {
		t.Fatalf("expected hashed password")
	}
	if err := hasher.Compare(hash, "correct-horse"); err != nil {
		t.Fatalf("compare matching password: %v", err)
	}
	if err := hasher.Compare(hash, "wrong-horse"); !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for mismatch, got %v", err)
	}

	if _, err := hasher.Hash(strings.Repeat("x", 80)); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for long password, got %v", err)
	}
}
