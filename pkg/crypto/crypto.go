package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// HashAPIKey hashes a raw service API key with bcrypt for storage in config.
func HashAPIKey(key string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(key), bcryptCost)
	return string(bytes), err
}

// CheckAPIKey compares a presented API key against a stored bcrypt hash.
func CheckAPIKey(key, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}

// GenerateAPIKey produces a cryptographically random base64url key
// (32 bytes = 43 chars).
func GenerateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// RedemptionCode derives the proof string issued when a redemption completes.
// It is deterministic in (id, at); uniqueness follows from the monotonic id.
func RedemptionCode(id uint64, at time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%d", id, at.UTC().Unix())))
	return "RDM-" + strings.ToUpper(fmt.Sprintf("%x", sum[:8]))
}
