package auth

import (
	"testing"

	"github.com/spec-kit/donation-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	identity := domain.Identity{
		ID:              "u-1",
		Name:            "Jordan",
		Email:           "jordan@x.com",
		Role:            domain.RoleBloodBank,
		ProfileComplete: true,
	}

	token, expiresAt, err := tm.GenerateToken(identity)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if expiresAt.IsZero() {
		t.Error("expected non-zero expiry")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if got := claims.Identity(); got != identity {
		t.Errorf("identity mismatch: got %+v, want %+v", got, identity)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", 60)
	token, _, err := tm.GenerateToken(domain.Identity{ID: "u-1", Role: domain.RoleDonor})
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	other := NewTokenManager("secret-b", 60)
	if _, err := other.ParseToken(token); err == nil {
		t.Error("expected parse failure with the wrong secret")
	}
}
