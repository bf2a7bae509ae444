// Package httpapi assembles the registry's HTTP surface. It is thin wiring:
// handlers delegate to domain services, and all business rules stay behind
// the service layer.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	certhandler "certreg/internal/certificate/handler"
	issuerhandler "certreg/internal/issuer/handler"
	"certreg/internal/platform/health"
	id "certreg/pkg/domain"
	"certreg/pkg/platform/middleware/auth"
	"certreg/pkg/platform/middleware/owner"
	"certreg/pkg/platform/middleware/request"
	"certreg/pkg/platform/middleware/requesttime"
)

const maxBodyBytes = 1 << 16 // request bodies are small JSON documents

// Deps carries everything the router mounts.
type Deps struct {
	Logger         *slog.Logger
	Health         *health.Handler
	Certificates   *certhandler.Handler
	Issuers        *issuerhandler.Handler
	TokenValidator auth.TokenValidator
	OwnerIdentity  id.Identity
	OwnerTokenHash string
}

// NewRouter wires the public, issuer, and owner route groups.
//
// Route map:
//
//	GET  /health*                          liveness/readiness, public
//	GET  /metrics                          prometheus, public
//	GET  /certificates/{tokenID}           verification, public
//	POST /certificates                     issuance, issuer JWT
//	*    /admin/issuers*                   allow-list admin, owner token
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.RequestID)
	r.Use(request.Recovery(deps.Logger))
	r.Use(request.Logger(deps.Logger))
	r.Use(requesttime.Middleware)
	r.Use(request.BodyLimit(maxBodyBytes))

	deps.Health.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Public verification: no auth, read-only.
	deps.Certificates.RegisterVerify(r)

	// Issuance: bearer token establishes the caller identity.
	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(auth.RequireAuth(deps.TokenValidator, deps.Logger))
		deps.Certificates.RegisterIssue(r)
	})

	// Owner administration: shared-secret owner token.
	r.Route("/admin", func(r chi.Router) {
		r.Use(owner.RequireOwnerToken(deps.OwnerIdentity, deps.OwnerTokenHash, deps.Logger))
		deps.Issuers.Register(r)
	})

	return r
}
