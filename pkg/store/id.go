package store

import (
	"crypto/rand"
	"encoding/hex"
)

// newToken returns a URL-safe hex session token.
func newToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
