package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"tenantgate.org/internal/audit"
	"tenantgate.org/internal/auth"
	"tenantgate.org/internal/tenant"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/v1/auth/login",
	"/metrics",
	"/healthz",
	"/readyz",
	"/v1/info",
	"/",
}

// withAuth is the per-request authentication gate. For a presented bearer
// token it verifies the signature, resolves the claimed tenant, looks the
// subject up through the tenant-routed store, and checks the user's recorded
// tenant against the claim; any failure is a uniform 401 with no detail about
// which step rejected. On success the downstream handler runs with the tenant
// and principal bound to a request-scoped derived context, so the binding is
// gone once the handler returns, whatever the exit path.
//
// A request without an Authorization header passes through anonymously;
// handlers that need an identity reject it themselves.
func (a *API) withAuth(next http.Handler) http.Handler {
	if a == nil || a.auth == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		if strings.TrimSpace(r.Header.Get(authHeader)) == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}

		principal, tenantID, err := a.auth.Authenticate(r.Context(), token)
		if err != nil {
			_ = audit.LogEvent(r.Context(), "auth.request.rejected", map[string]any{
				"path":   r.URL.Path,
				"reason": err.Error(),
			})
			switch {
			case errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrTokenExpired),
				errors.Is(err, auth.ErrUnauthorized):
				writeError(w, r, http.StatusUnauthorized, "unauthorized")
			default:
				writeError(w, r, http.StatusInternalServerError, "authentication error")
			}
			return
		}

		ctx := tenant.WithTenant(r.Context(), tenantID)
		ctx = auth.ContextWithPrincipal(ctx, principal)
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
