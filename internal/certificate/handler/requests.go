package handler

import (
	"strings"
	"time"

	"certreg/internal/certificate/models"
	id "certreg/pkg/domain"
	dErrors "certreg/pkg/domain-errors"
)

// IssueCertificateRequest is the JSON body for certificate issuance. The
// issuer is never part of the body; it comes from the authenticated caller.
type IssueCertificateRequest struct {
	Recipient string `json:"recipient"`
	Course    string `json:"course"`
}

func (r *IssueCertificateRequest) Normalize() {
	r.Recipient = strings.TrimSpace(r.Recipient)
	r.Course = strings.TrimSpace(r.Course)
}

func (r *IssueCertificateRequest) Validate() error {
	if _, err := id.ParseIdentity(r.Recipient); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid recipient")
	}
	return models.ValidateCourse(r.Course)
}

// CertificateResponse is the JSON shape of a certificate record.
type CertificateResponse struct {
	TokenID   string    `json:"token_id"`
	Recipient string    `json:"recipient"`
	Course    string    `json:"course"`
	Issuer    string    `json:"issuer"`
	IssuedAt  time.Time `json:"issued_at"`
}

func toCertificateResponse(cert *models.Certificate) CertificateResponse {
	return CertificateResponse{
		TokenID:   cert.TokenID.String(),
		Recipient: cert.Recipient.String(),
		Course:    cert.Course,
		Issuer:    cert.Issuer.String(),
		IssuedAt:  cert.IssuedAt,
	}
}
