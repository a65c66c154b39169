package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	authkit "github.com/Hydrex75/authkit"
)

type userContextKey struct{}

// UserFromContext returns the credential-verified [authkit.User] injected by
// [CredentialGuard].
func UserFromContext(ctx context.Context) (authkit.User, bool) {
	u, ok := ctx.Value(userContextKey{}).(authkit.User)
	return u, ok
}

type credentialRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CredentialGuard returns middleware that verifies the email/password pair
// carried in the request body. Shape failures and credential mismatches are
// both rejected with 401 so the response does not reveal which check failed.
func CredentialGuard(svc *authkit.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if svc == nil {
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}

			var req credentialRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			if !CredentialShapeValid(req.Email, req.Password) {
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}

			user, err := svc.ValidateCredentials(r.Context(), req.Email, req.Password)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey{}, *user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CredentialShapeValid reports whether an email/password pair is worth
// handing to the verifier at all: the password must be at least six
// characters and the email must have a non-empty local and domain part.
func CredentialShapeValid(email, password string) bool {
	if len(password) < 6 {
		return false
	}
	at := strings.IndexByte(email, '@')
	return at > 0 && at < len(email)-1
}
