package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	authkit "github.com/Hydrex75/authkit"
)

type refreshContextKey struct{}

type refreshContextValue struct {
	identity string
	token    string
}

// RefreshFromContext returns the verified identity and raw refresh token
// injected by [RefreshGuard].
func RefreshFromContext(ctx context.Context) (identity, token string, ok bool) {
	v, ok := ctx.Value(refreshContextKey{}).(refreshContextValue)
	if !ok {
		return "", "", false
	}
	return v.identity, v.token, true
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshGuard returns middleware that verifies the refresh token carried in
// the request body before the wrapped handler runs. A missing, malformed, or
// expired token is rejected with 401; a structurally valid token that no
// longer matches the active session is rejected with 403. The wrapped
// handler receives the verified identity and raw token via
// [RefreshFromContext]; rotation itself stays with the handler.
func RefreshGuard(svc *authkit.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if svc == nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			var req refreshRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			identity, err := svc.CheckRefresh(r.Context(), req.RefreshToken)
			if err != nil {
				switch {
				case errors.Is(err, authkit.ErrAccessDenied):
					writeError(w, http.StatusForbidden, "access denied")
				case errors.Is(err, authkit.ErrUnauthorized):
					writeError(w, http.StatusUnauthorized, "unauthorized")
				default:
					writeError(w, http.StatusInternalServerError, "internal error")
				}
				return
			}

			ctx := context.WithValue(r.Context(), refreshContextKey{}, refreshContextValue{
				identity: identity,
				token:    req.RefreshToken,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
