// Package checksum fingerprints document contents so unchanged songs are not
// recompiled.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Changed reports whether data no longer matches the recorded digest.
func Changed(recorded string, data []byte) bool {
	return recorded == "" || recorded != Sum(data)
}
