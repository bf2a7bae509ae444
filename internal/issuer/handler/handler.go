// Package handler exposes the owner's issuer administration endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"certreg/internal/issuer/models"
	id "certreg/pkg/domain"
	dErrors "certreg/pkg/domain-errors"
	"certreg/pkg/platform/httputil"
	"certreg/pkg/platform/middleware/request"
)

// Service defines the issuer administration operations the handler needs.
type Service interface {
	Grant(ctx context.Context, identity id.Identity) error
	Revoke(ctx context.Context, identity id.Identity) error
	Get(ctx context.Context, identity id.Identity) (*models.Issuer, error)
	List(ctx context.Context) ([]*models.Issuer, error)
}

// Handler handles issuer administration endpoints. The router mounts it
// behind the owner-token middleware; the service re-checks ownership so the
// authorization decision does not depend on route wiring alone.
type Handler struct {
	issuers Service
	logger  *slog.Logger
}

func New(issuers Service, logger *slog.Logger) *Handler {
	return &Handler{issuers: issuers, logger: logger}
}

// Register registers the issuer admin routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/issuers", h.handleList)
	r.Get("/issuers/{identity}", h.handleGet)
	r.Post("/issuers/{identity}/grant", h.handleGrant)
	r.Post("/issuers/{identity}/revoke", h.handleRevoke)
}

// IssuerResponse is the JSON shape of an issuer row.
type IssuerResponse struct {
	Identity   string    `json:"identity"`
	Authorized bool      `json:"authorized"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toIssuerResponse(issuer *models.Issuer) IssuerResponse {
	return IssuerResponse{
		Identity:   issuer.Identity.String(),
		Authorized: issuer.Authorized,
		UpdatedAt:  issuer.UpdatedAt,
	}
}

func (h *Handler) handleGrant(w http.ResponseWriter, r *http.Request) {
	h.handleAuthorizationChange(w, r, h.issuers.Grant, "failed to grant issuer")
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	h.handleAuthorizationChange(w, r, h.issuers.Revoke, "failed to revoke issuer")
}

func (h *Handler) handleAuthorizationChange(
	w http.ResponseWriter,
	r *http.Request,
	change func(ctx context.Context, identity id.Identity) error,
	failureMsg string,
) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	identity, err := id.ParseIdentity(chi.URLParam(r, "identity"))
	if err != nil {
		h.logger.WarnContext(ctx, "invalid issuer identity",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	if err := change(ctx, identity); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, failureMsg,
			"request_id", requestID,
			"issuer", identity.String(),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, failureMsg))
		return
	}

	issuer, err := h.issuers.Get(ctx, identity)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load issuer after update",
			"request_id", requestID,
			"issuer", identity.String(),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to load issuer"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toIssuerResponse(issuer))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := id.ParseIdentity(chi.URLParam(r, "identity"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	issuer, err := h.issuers.Get(ctx, identity)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) || dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to load issuer",
			"request_id", request.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to load issuer"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toIssuerResponse(issuer))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	issuers, err := h.issuers.List(ctx)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to list issuers",
			"request_id", request.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list issuers"))
		return
	}

	out := make([]IssuerResponse, 0, len(issuers))
	for _, issuer := range issuers {
		out = append(out, toIssuerResponse(issuer))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]IssuerResponse{"issuers": out})
}
