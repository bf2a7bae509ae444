package testutil

import (
	"net/http"

	id "certreg/pkg/domain"
	"certreg/pkg/requestcontext"
)

// WithCaller adds a caller identity to the request context.
// This simulates what the auth middleware would do for authenticated requests.
// Invalid identities are silently ignored so tests can exercise the missing-caller path.
func WithCaller(req *http.Request, caller string) *http.Request {
	parsed, err := id.ParseIdentity(caller)
	if err != nil {
		return req
	}
	ctx := requestcontext.WithCaller(req.Context(), parsed)
	return req.WithContext(ctx)
}
