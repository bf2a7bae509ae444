// Package models defines the issuer registry's domain entities.
package models

import (
	"time"

	id "certreg/pkg/domain"
)

// Issuer is an identity's standing in the issuer allow-list. Identities are
// unauthorized until the owner grants them; a revoked issuer keeps its row
// with Authorized set to false so the grant history survives.
type Issuer struct {
	Identity   id.Identity
	Authorized bool
	UpdatedAt  time.Time
}

// NewIssuer builds an issuer row for the given authorization state.
func NewIssuer(identity id.Identity, authorized bool, now time.Time) *Issuer {
	return &Issuer{
		Identity:   identity,
		Authorized: authorized,
		UpdatedAt:  now,
	}
}
