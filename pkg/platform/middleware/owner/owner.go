// Package owner gates the owning authority's administrative surface.
package owner

import (
	"log/slog"
	"net/http"

	id "certreg/pkg/domain"
	request "certreg/pkg/platform/middleware/request"
	"certreg/pkg/requestcontext"
	"certreg/pkg/secrets"
)

// RequireOwnerToken verifies the X-Owner-Token header against the stored
// bcrypt hash and, on success, injects the configured owner identity as the
// request caller. The issuer service still performs its own owner capability
// check against that identity; this middleware only authenticates the header.
func RequireOwnerToken(ownerIdentity id.Identity, ownerTokenHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Owner-Token")
			if err := secrets.Verify(token, ownerTokenHash); err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "owner token mismatch",
					"request_id", request.GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"owner token required"}`))
				return
			}

			ctx := requestcontext.WithCaller(r.Context(), ownerIdentity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
