package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"tenantgate.org/internal/audit"
	"tenantgate.org/internal/auth"
	"tenantgate.org/internal/obs"
	"tenantgate.org/internal/tenant"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Tenant   string `json:"tenant"`
}

type loginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	Username  string `json:"username"`
	Tenant    string `json:"tenant"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	result, err := a.auth.Login(r.Context(), req.Username, req.Password, req.Tenant)
	if err != nil {
		// Full cause goes to the audit log; the client only ever sees the
		// same generic rejection, whichever step failed.
		_ = audit.LogEvent(r.Context(), "auth.login.rejected", map[string]any{
			"username": req.Username,
			"reason":   err.Error(),
		})
		switch {
		case errors.Is(err, tenant.ErrTenantRequired),
			errors.Is(err, tenant.ErrInvalidTenant),
			errors.Is(err, auth.ErrInvalidCredentials):
			obs.ObserveLogin(loginMetricTenant(err, req.Tenant), "rejected")
			writeError(w, r, http.StatusUnauthorized, "invalid credentials")
		default:
			obs.ObserveLogin(loginMetricTenant(err, req.Tenant), "error")
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.login.succeeded", map[string]any{
		"username": result.Username,
		"tenant":   result.Tenant,
		"expires":  result.ExpiresAt,
	})
	obs.ObserveLogin(result.Tenant, "succeeded")

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     result.Token,
		TokenType: "Bearer",
		Username:  result.Username,
		Tenant:    result.Tenant,
	})
}

// loginMetricTenant keeps the tenant label bounded: only names that resolved
// against the registry are used, everything else counts as unknown.
func loginMetricTenant(err error, requested string) string {
	if errors.Is(err, tenant.ErrTenantRequired) || errors.Is(err, tenant.ErrInvalidTenant) {
		return "unknown"
	}
	return strings.ToLower(strings.TrimSpace(requested))
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"username": principal.Username,
		"tenant":   principal.TenantID,
	})
}
