package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// NewSecret returns n random bytes, hex encoded.  Used for password reset
// links and hub API tokens.
func NewSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("NewSecret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashSecret is how secrets are stored at rest and looked up.
func HashSecret(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}
