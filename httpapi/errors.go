package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	authkit "github.com/Hydrex75/authkit"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeServiceError maps service errors onto the HTTP surface. Production
// mode collapses everything unexpected into a fixed message so backend
// detail never reaches clients.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authkit.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "invalid credentials"})
	case errors.Is(err, authkit.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "unauthorized"})
	case errors.Is(err, authkit.ErrAccessDenied):
		writeJSON(w, http.StatusForbidden, messageResponse{Message: "access denied"})
	default:
		msg := "internal error"
		if !s.production && err != nil {
			msg = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: msg})
	}
}
