package transcription

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the deterministic digest of canonical audio bytes.
// It is a cache key, not a security boundary.
func Fingerprint(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// CacheKey namespaces a fingerprint by model and language, since the same
// audio transcribed with a different model or language hint is a different
// computation.
func CacheKey(fingerprint, model, language string) string {
	return fingerprint + ":" + model + ":" + language
}
