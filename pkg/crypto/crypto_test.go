package crypto

import (
	"strings"
	"testing"
	"time"
)

func TestAPIKeyRoundTrip(t *testing.T) {
	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(key) != 43 {
		t.Fatalf("unexpected key length %d", len(key))
	}

	hash, err := HashAPIKey(key)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckAPIKey(key, hash) {
		t.Fatal("valid key rejected")
	}
	if CheckAPIKey(key+"x", hash) {
		t.Fatal("wrong key accepted")
	}
}

func TestRedemptionCode(t *testing.T) {
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	code := RedemptionCode(42, at)
	if !strings.HasPrefix(code, "RDM-") {
		t.Fatalf("missing prefix: %s", code)
	}
	if len(code) != 20 {
		t.Fatalf("unexpected length %d: %s", len(code), code)
	}
	if code != strings.ToUpper(code) {
		t.Fatalf("code not upper case: %s", code)
	}

	// Deterministic in (id, time); distinct ids give distinct codes.
	if RedemptionCode(42, at) != code {
		t.Fatal("code not deterministic")
	}
	if RedemptionCode(43, at) == code {
		t.Fatal("distinct ids collided")
	}
	// Sub-second precision does not change the code.
	if RedemptionCode(42, at.Add(500*time.Millisecond)) != code {
		t.Fatal("sub-second timestamp changed the code")
	}
}
