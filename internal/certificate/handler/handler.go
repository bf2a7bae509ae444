// Package handler exposes the certificate issuance and verification endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"certreg/internal/certificate/models"
	id "certreg/pkg/domain"
	dErrors "certreg/pkg/domain-errors"
	"certreg/pkg/platform/httputil"
	"certreg/pkg/platform/middleware/request"
)

// Service defines the certificate operations the handler needs.
type Service interface {
	Issue(ctx context.Context, recipient id.Identity, course string) (*models.Certificate, error)
	Verify(ctx context.Context, token id.TokenID) (*models.Certificate, error)
}

// Handler handles certificate endpoints. Issue is registered behind the
// issuer auth middleware; Verify is public.
type Handler struct {
	certificates Service
	logger       *slog.Logger
}

func New(certificates Service, logger *slog.Logger) *Handler {
	return &Handler{certificates: certificates, logger: logger}
}

// RegisterIssue registers the authenticated issuance route.
func (h *Handler) RegisterIssue(r chi.Router) {
	r.Post("/certificates", h.handleIssue)
}

// RegisterVerify registers the public verification route.
func (h *Handler) RegisterVerify(r chi.Router) {
	r.Get("/certificates/{tokenID}", h.handleVerify)
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[IssueCertificateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	recipient, err := id.ParseIdentity(req.Recipient)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	cert, err := h.certificates.Issue(ctx, recipient, req.Course)
	if err != nil {
		switch {
		case dErrors.HasCode(err, dErrors.CodeUnauthorized),
			dErrors.HasCode(err, dErrors.CodeValidation):
			h.logger.WarnContext(ctx, "issuance rejected",
				"request_id", requestID,
				"error", err.Error(),
			)
			httputil.WriteError(w, err)
		default:
			h.logger.ErrorContext(ctx, "failed to issue certificate",
				"request_id", requestID,
				"error", err.Error(),
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to issue certificate"))
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toCertificateResponse(cert))
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tokenID, err := id.ParseTokenID(chi.URLParam(r, "tokenID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	cert, err := h.certificates.Verify(ctx, tokenID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to verify certificate",
			"request_id", request.GetRequestID(ctx),
			"token_id", tokenID.String(),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to verify certificate"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toCertificateResponse(cert))
}
