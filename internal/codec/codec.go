// Package codec implements the obfuscation applied to vent records before
// they are persisted: a reversible encoding for fields moderators must be
// able to recover, and a short one-way fingerprint for log display.
//
// The encoding is base64 of the UTF-8 bytes. It deters casual inspection of
// the raw store, nothing more; it is intentionally not encryption, because
// the moderator audit trail depends on the fields being recoverable without
// key management.
package codec

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// FingerprintLen is the length in hex characters of a content fingerprint.
const FingerprintLen = 16

// Encode returns the obfuscated form of text. Decode(Encode(t)) == t for
// every valid UTF-8 string.
func Encode(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

// Decode reverses Encode. It fails only on blobs that were not produced by
// Encode (e.g. a corrupted store).
func Decode(blob string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("failed to decode blob: %w", err)
	}
	return string(b), nil
}

// Fingerprint returns a 16-hex-char sha256-based digest of text. It is a
// stable non-reversible identifier for displaying log entries, not a
// security boundary: 64 bits is plenty for uniqueness-in-practice and
// nothing else.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:FingerprintLen]
}
