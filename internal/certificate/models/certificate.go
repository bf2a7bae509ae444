// Package models defines the certificate record entities.
package models

import (
	"strings"
	"time"

	id "certreg/pkg/domain"
	dErrors "certreg/pkg/domain-errors"
)

// MaxCourseLength bounds the course label in bytes.
const MaxCourseLength = 256

// Certificate is an immutable record of a single issuance. Records are
// written exactly once and never updated or deleted.
type Certificate struct {
	TokenID   id.TokenID
	Recipient id.Identity
	Course    string
	Issuer    id.Identity
	IssuedAt  time.Time
}

// NewCertificate builds a validated certificate record. The course label is
// trimmed of surrounding whitespace before validation.
func NewCertificate(tokenID id.TokenID, recipient id.Identity, course string, issuer id.Identity, issuedAt time.Time) (*Certificate, error) {
	course = strings.TrimSpace(course)
	if err := ValidateCourse(course); err != nil {
		return nil, err
	}
	if recipient.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "recipient is required")
	}
	if issuer.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "issuer is required")
	}
	return &Certificate{
		TokenID:   tokenID,
		Recipient: recipient,
		Course:    course,
		Issuer:    issuer,
		IssuedAt:  issuedAt,
	}, nil
}

// ValidateCourse rejects empty, whitespace-only, or oversized course labels.
func ValidateCourse(course string) error {
	if strings.TrimSpace(course) == "" {
		return dErrors.New(dErrors.CodeValidation, "course is required")
	}
	if len(course) > MaxCourseLength {
		return dErrors.New(dErrors.CodeValidation, "course exceeds maximum length")
	}
	return nil
}
