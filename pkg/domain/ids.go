// Package domain defines the core identifier types shared across services.
//
// Typed identifiers prevent cross-type assignment at compile time and enforce
// parse-time invariants at trust boundaries (HTTP handlers, token claims).
package domain

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	dErrors "certreg/pkg/domain-errors"
)

// MaxIdentityLength bounds identity strings to keep store keys and log lines sane.
const MaxIdentityLength = 128

// Identity names a participant: the owning authority, an issuer, or a
// certificate recipient. It is an opaque string (wallet address, DID, or
// institutional account name) rather than a UUID because identities arrive
// from token claims and external systems we do not control.
//
// Invariants enforced by ParseIdentity:
//   - non-empty
//   - at most MaxIdentityLength bytes
//   - valid UTF-8, printable characters only (no control characters, no spaces)
type Identity string

// ParseIdentity validates an untrusted string into an Identity.
func ParseIdentity(s string) (Identity, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity cannot be empty")
	}
	if len(s) > MaxIdentityLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity exceeds maximum length")
	}
	if !utf8.ValidString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity contains invalid characters")
	}
	for _, r := range s {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "identity contains invalid characters")
		}
	}
	return Identity(s), nil
}

func (i Identity) String() string { return string(i) }

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool { return i == "" }

// TokenID is the unique certificate identifier. It doubles as the token key
// in the unique-ownership ledger. IDs are allocated in strictly increasing
// order starting at zero and are never reused.
type TokenID uint64

// ParseTokenID validates an untrusted decimal string into a TokenID.
func ParseTokenID(s string) (TokenID, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "token id cannot be empty")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "token id must be a non-negative integer")
	}
	return TokenID(n), nil
}

func (t TokenID) String() string { return strconv.FormatUint(uint64(t), 10) }
