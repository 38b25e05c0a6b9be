package session

import (
	"crypto/rand"
	"encoding/base64"
)

// newHandle returns a fresh opaque session handle.
//
// Handles come from the OS CSPRNG with at least 256 bits of entropy and are
// never derived from time, subject id, or a counter. URL-safe, no padding.
func newHandle(nBytes int) (string, error) {
	if nBytes < minHandleBytes {
		nBytes = minHandleBytes
	}

	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
