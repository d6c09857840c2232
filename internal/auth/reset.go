package auth

import (
	"crypto/rand"
	"encoding/base64"
)

// resetTokenBytes is the entropy of a reset credential. 32 random bytes,
// well beyond practical guessing range for a one-hour window.
const resetTokenBytes = 32

// NewResetToken generates a cryptographically strong, URL-safe reset token.
// Reset credentials are deliberately opaque random strings, decoupled from
// the signed session-token format.
func NewResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
