// Package checksum derives content digests for note text.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of text.
func Sum(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// ETag returns a strong entity tag for text.
func ETag(text string) string {
	return `"` + Sum(text) + `"`
}
