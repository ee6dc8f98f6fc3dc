package httpx

import (
	"context"
	"net/http"
	"strings"
)

type identityContextKey string

const contextKeyIdentity identityContextKey = "expense-tracker-identity"

// identity is the request-scoped view of the verified caller. It is created
// by authenticate, read by handlers, and discarded with the request.
type identity struct {
	UserID   string
	Email    string
	Username string
}

// authenticate runs once per inbound request, before any handler. A valid
// bearer token attaches the resolved identity to the request context; a
// missing, malformed, or unverifiable token leaves the request anonymous and
// never aborts it; whether anonymity is acceptable is each route's call.
func (r *Router) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		raw, ok := bearerToken(req.Header.Get("Authorization"))
		if !ok {
			next(w, req)
			return
		}
		user, err := r.auth.Authorize(req.Context(), raw)
		if err != nil {
			r.logger.Warn("bearer token rejected", "error", err, "path", req.URL.Path)
			next(w, req)
			return
		}
		ident := identity{UserID: user.ID, Email: user.Email, Username: user.Username}
		ctx := context.WithValue(req.Context(), contextKeyIdentity, ident)
		next(w, req.WithContext(ctx))
	}
}

// requireAuth is the per-route declaration that the handler needs a verified
// caller. Anonymous requests are rejected with 401.
func (r *Router) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if _, ok := identityFromContext(req.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, req)
	}
}

// identityFromContext extracts the verified caller from context.
func identityFromContext(ctx context.Context) (identity, bool) {
	value := ctx.Value(contextKeyIdentity)
	if value == nil {
		return identity{}, false
	}
	ident, ok := value.(identity)
	return ident, ok
}

// bearerToken extracts the credential from an Authorization header. Anything
// that is not exactly "Bearer <token>" reports false.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
