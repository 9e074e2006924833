package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RefreshTokenBytes is the amount of randomness in a refresh token.
const RefreshTokenBytes = 64

// NewRefreshToken returns 64 random bytes from crypto/rand, hex encoded
// (128 characters).
func NewRefreshToken() (string, error) {
	b := make([]byte, RefreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
