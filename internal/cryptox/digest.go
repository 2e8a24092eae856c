// Package cryptox holds the one-way reduction of face feature strings into
// credential digests. Only digests are ever persisted; the feature string
// itself never leaves this call.
package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/facegate/internal/common"
)

// DigestLen is the length of a rendered digest in hex characters.
const DigestLen = sha256.Size * 2

// Digest returns the lowercase hex SHA-256 of the exact UTF-8 bytes of
// feature. Empty input is accepted and yields the digest of the empty string.
//
// Example:
//
//	cryptox.Digest("abc")
//	// ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad
func Digest(feature string) string {
	sum := sha256.Sum256([]byte(feature))
	return hex.EncodeToString(sum[:])
}

// ValidateDigest reports whether s is a canonical digest: exactly DigestLen
// lowercase hex characters. Stored records are validated with it before
// they are written so a colon or newline can never reach the logs.
func ValidateDigest(s string) error {
	if len(s) != DigestLen {
		return fmt.Errorf("%w: length %d, want %d", common.ErrInvalidDigest, len(s), DigestLen)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return fmt.Errorf("%w: unexpected character %q at %d", common.ErrInvalidDigest, c, i)
		}
	}
	return nil
}
