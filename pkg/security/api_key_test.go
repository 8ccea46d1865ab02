package security

import (
	"strings"
	"testing"

	"github.com/dispatchday/dispatchday-backend/pkg/config"
)

func testAPIKeyConfig() config.APIKeyConfig {
	return config.APIKeyConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func TestGenerateAPIKey(t *testing.T) {
	first, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(first, APIKeyPrefix) {
		t.Fatalf("key %q missing prefix %q", first, APIKeyPrefix)
	}

	second, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct keys")
	}
}

func TestHashAndVerifyAPIKey(t *testing.T) {
	cfg := testAPIKeyConfig()
	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	encoded, err := HashAPIKey(key, cfg)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash format %q", encoded)
	}

	ok, err := VerifyAPIKey(key, encoded)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("expected key to verify against its own hash")
	}

	ok, err = VerifyAPIKey(key+"x", encoded)
	if err != nil {
		t.Fatalf("verify mismatch: %v", err)
	}
	if ok {
		t.Fatal("expected mismatched key to fail verification")
	}
}

func TestHashAPIKeyRejectsEmpty(t *testing.T) {
	if _, err := HashAPIKey("", testAPIKeyConfig()); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestVerifyAPIKeyInvalidHash(t *testing.T) {
	if _, err := VerifyAPIKey("ddk_whatever", "not-a-hash"); err != ErrInvalidHash {
		t.Fatalf("err = %v, want ErrInvalidHash", err)
	}
}
