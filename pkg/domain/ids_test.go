package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "certreg/pkg/domain-errors"
)

func TestParseIdentity_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseIdentity("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects oversized input", func(t *testing.T) {
		_, err := ParseIdentity(strings.Repeat("a", MaxIdentityLength+1))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts input at maximum length", func(t *testing.T) {
		s := strings.Repeat("a", MaxIdentityLength)
		identity, err := ParseIdentity(s)
		require.NoError(t, err)
		assert.Equal(t, Identity(s), identity)
	})

	t.Run("accepts typical identifiers", func(t *testing.T) {
		for _, s := range []string{
			"university-a",
			"0x8ba1f109551bD432803012645Ac136ddd64DBA72",
			"did:web:registry.example.edu",
			"alice@example.edu",
		} {
			identity, err := ParseIdentity(s)
			require.NoError(t, err, "input %q", s)
			assert.Equal(t, s, identity.String())
		}
	})
}

// TestParseIdentity_SecurityInvariants validates trust boundary rules:
// identities arrive from token claims and URL parameters, so parsing must
// reject control characters and other injection vectors.
func TestParseIdentity_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"embedded null byte", "issuer\x00admin"},
		{"newline injection", "issuer\nrole=owner"},
		{"carriage return", "issuer\r"},
		{"tab character", "issuer\tadmin"},
		{"interior space", "issuer admin"},
		{"leading space", " issuer"},
		{"invalid utf-8", string([]byte{0x80, 0x81})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseIdentity(tt.input)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestParseTokenID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseTokenID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects non-numeric input", func(t *testing.T) {
		for _, s := range []string{"abc", "-1", "1.5", "0x10", " 7"} {
			_, err := ParseTokenID(s)
			require.Error(t, err, "input %q", s)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})

	t.Run("accepts zero", func(t *testing.T) {
		tokenID, err := ParseTokenID("0")
		require.NoError(t, err)
		assert.Equal(t, TokenID(0), tokenID)
	})

	t.Run("round-trips through String", func(t *testing.T) {
		tokenID, err := ParseTokenID("18446744073709551615")
		require.NoError(t, err)
		assert.Equal(t, "18446744073709551615", tokenID.String())
	})

	t.Run("rejects overflow", func(t *testing.T) {
		_, err := ParseTokenID("18446744073709551616")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
