package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/facegate/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigest_KnownVectors(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Digest(tc.in), "Digest(%q)", tc.in)
	}
}

func TestDigest_Deterministic(t *testing.T) {
	for _, f := range []string{"abc", "0.12,0.98,0.33", "лицо", strings.Repeat("x", 4096)} {
		require.Equal(t, Digest(f), Digest(f))
		require.Len(t, Digest(f), DigestLen)
	}
}

func TestDigest_HashesExactUTF8Bytes(t *testing.T) {
	f := "caf\u00e9"
	sum := sha256.Sum256([]byte(f))
	assert.Equal(t, hex.EncodeToString(sum[:]), Digest(f))

	// NFD form differs byte-wise and must not be normalised away.
	assert.NotEqual(t, Digest("caf\u00e9"), Digest("cafe\u0301"))
}

func TestDigest_DistinctInputsDiffer(t *testing.T) {
	pairs := [][2]string{
		{"abc", "abd"},
		{"abc", "abc "},
		{"abc", "ABC"},
		{"face1", "face1\n"},
		{"", " "},
		{"a:b", "a"},
	}
	for _, p := range pairs {
		assert.NotEqual(t, Digest(p[0]), Digest(p[1]), "%q vs %q", p[0], p[1])
	}
}

func TestValidateDigest(t *testing.T) {
	require.NoError(t, ValidateDigest(Digest("abc")))

	bad := []string{
		"",
		"abc",
		strings.ToUpper(Digest("abc")),
		Digest("abc")[:63] + ":",
		Digest("abc") + "0",
	}
	for _, s := range bad {
		err := ValidateDigest(s)
		require.Error(t, err, "input %q", s)
		assert.True(t, errors.Is(err, common.ErrInvalidDigest))
	}
}
