// Package events defines the registry's externally observable notifications.
//
// Notifications are append-only facts about committed state changes. The core
// never reads them back for its own logic; they exist for downstream
// observers (indexers, compliance archives, dashboards).
package events

import (
	"time"

	id "certreg/pkg/domain"
)

// Type identifies the kind of notification.
type Type string

const (
	// TypeCertificateIssued is raised once per successful issuance.
	TypeCertificateIssued Type = "certificate_issued"

	// TypeIssuerApproved is raised on every successful grant, including
	// grants that were already in effect.
	TypeIssuerApproved Type = "issuer_approved"

	// TypeIssuerRevoked is raised on every successful revoke, including
	// revokes of identities that were never authorized.
	TypeIssuerRevoked Type = "issuer_revoked"
)

// Event is emitted from domain logic to capture key state changes. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Type      Type        `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Issuer    id.Identity `json:"issuer"`

	// Certificate fields, set only for TypeCertificateIssued.
	TokenID   id.TokenID  `json:"token_id,omitempty"`
	Recipient id.Identity `json:"recipient,omitempty"`
	Course    string      `json:"course,omitempty"`

	// RequestID correlates the notification with the HTTP request that
	// caused it.
	RequestID string `json:"request_id,omitempty"`
}

// CertificateIssued builds the notification for a successful issuance.
func CertificateIssued(tokenID id.TokenID, recipient id.Identity, course string, issuer id.Identity) Event {
	return Event{
		Type:      TypeCertificateIssued,
		TokenID:   tokenID,
		Recipient: recipient,
		Course:    course,
		Issuer:    issuer,
	}
}

// IssuerApproved builds the notification for a successful grant.
func IssuerApproved(issuer id.Identity) Event {
	return Event{Type: TypeIssuerApproved, Issuer: issuer}
}

// IssuerRevoked builds the notification for a successful revoke.
func IssuerRevoked(issuer id.Identity) Event {
	return Event{Type: TypeIssuerRevoked, Issuer: issuer}
}
