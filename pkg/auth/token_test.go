package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/shophub/pkg/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		TokenSecret: "secret",
		TokenIssuer: "shophub",
		TokenTTL:    30 * time.Minute,
	}
}

func TestMintAndParseToken(t *testing.T) {
	cfg := testAuthConfig()
	now := time.Now().UTC()

	token, err := MintToken(cfg, now, TokenPayload{UserID: 42, Email: "asha@example.com", Name: "Asha"})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	claims, err := ParseToken(cfg, token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "asha@example.com" || claims.Name != "Asha" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.Subject != "asha@example.com" {
		t.Fatalf("expected subject email, got %q", claims.Subject)
	}
	if claims.Issuer != cfg.TokenIssuer {
		t.Fatalf("expected issuer %s, got %s", cfg.TokenIssuer, claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}
	if !claims.ExpiresAt.Time.After(claims.IssuedAt.Time) {
		t.Fatal("expected expiry after issue time")
	}
}

func TestMintTokenValidation(t *testing.T) {
	cfg := testAuthConfig()
	cfg.TokenSecret = ""
	if _, err := MintToken(cfg, time.Now(), TokenPayload{Email: "a@b.co"}); err == nil {
		t.Fatal("expected error for missing secret")
	}
	if _, err := MintToken(testAuthConfig(), time.Now(), TokenPayload{}); err == nil {
		t.Fatal("expected error for missing email")
	}
}

func TestParseTokenRejectsExpiredAndForeign(t *testing.T) {
	cfg := testAuthConfig()
	token, err := MintToken(cfg, time.Now().Add(-2*time.Hour), TokenPayload{Email: "a@b.co"})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	if _, err := ParseToken(cfg, token); err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expired error, got %v", err)
	}

	fresh, err := MintToken(cfg, time.Now(), TokenPayload{Email: "a@b.co"})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	other := cfg
	other.TokenSecret = "different"
	if _, err := ParseToken(other, fresh); err == nil {
		t.Fatal("expected signature error")
	}
}
