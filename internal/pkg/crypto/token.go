// Package crypto provides cryptographic utilities for Wildpitch.
package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// SessionTokenBytes is the number of random bytes in a session token.
// Tokens are hex-encoded, so the wire form is twice this length.
const SessionTokenBytes = 32

// GenerateSessionToken generates an unguessable session token.
// Returns the token as a 64-character hex string.
func GenerateSessionToken() (string, error) {
	buf := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// ValidSessionToken validates that a string has the shape of a session token.
// Tokens from outside are checked before hitting the session store.
func ValidSessionToken(token string) bool {
	if len(token) != SessionTokenBytes*2 {
		return false
	}
	for _, c := range token {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}
