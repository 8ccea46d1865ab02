package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dispatchday/dispatchday-backend/pkg/config"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "dispatchday-test",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	storeID := uuid.New()

	payload := AccessTokenPayload{
		UserID:   uuid.New(),
		Role:     enums.ActorRoleMerchant,
		StoreIDs: []uuid.UUID{storeID},
	}

	signed, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != payload.UserID {
		t.Fatalf("user id = %s, want %s", claims.UserID, payload.UserID)
	}
	if claims.Role != enums.ActorRoleMerchant {
		t.Fatalf("role = %s, want merchant", claims.Role)
	}
	if len(claims.StoreIDs) != 1 || claims.StoreIDs[0] != storeID {
		t.Fatalf("store ids = %v, want [%s]", claims.StoreIDs, storeID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("issuer = %s, want %s", claims.Issuer, cfg.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}
}

func TestMintRejectsMerchantWithoutStores(t *testing.T) {
	payload := AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRoleMerchant,
	}
	if _, err := MintAccessToken(testJWTConfig(), time.Now(), payload); err == nil {
		t.Fatal("expected error for merchant token with no stores")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Secret = "different-secret"
	if _, err := ParseAccessToken(other, signed); err == nil {
		t.Fatal("expected signature validation to fail")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	issued := time.Now().Add(-2 * time.Hour)
	signed, err := MintAccessToken(cfg, issued, AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestCanAccessStore(t *testing.T) {
	owned := uuid.New()
	other := uuid.New()

	merchant := &AccessTokenClaims{Role: enums.ActorRoleMerchant, StoreIDs: []uuid.UUID{owned}}
	if !merchant.CanAccessStore(owned) {
		t.Fatal("merchant should access owned store")
	}
	if merchant.CanAccessStore(other) {
		t.Fatal("merchant should not access foreign store")
	}

	admin := &AccessTokenClaims{Role: enums.ActorRoleAdmin}
	if !admin.CanAccessStore(other) {
		t.Fatal("admin should access any store")
	}
}
