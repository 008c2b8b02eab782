package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// Normalize prepares text for hashing and vectorization: lowercase,
// whitespace collapsed to single spaces, punctuation stripped except
// hyphens, trimmed. Hyphens are kept because they carry meaning in
// medical terms ("intra-operative", "X-ray").
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))

	lastSpace := true // Leading whitespace is dropped.
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-':
			b.WriteRune(r)
			lastSpace = false
		default:
			// Punctuation other than hyphens is dropped.
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// ContentHash returns the SHA-256 hex digest of the normalised text.
// Used for both document- and page-level exact duplicate detection.
// Collisions between different normalised texts are treated as
// cryptographically negligible.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}
