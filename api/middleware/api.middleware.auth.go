package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/beeguardai/hub/internal/errors"
)

// APIKeyMiddleware guards the device-facing endpoints with a shared
// ingest key. Full user authentication lives in the identity provider in
// front of the hub; devices and gateways only carry this key.
type APIKeyMiddleware struct {
	key string
}

func NewAPIKeyMiddleware(key string) *APIKeyMiddleware {
	return &APIKeyMiddleware{key: key}
}

// Authenticate validates the ingest key header. An empty configured key
// leaves the endpoints open (local development).
func (m *APIKeyMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.key == "" {
			next.ServeHTTP(w, r)
			return
		}

		token := extractToken(r)
		if token == "" {
			handleError(w, errors.NewAuthError("no api key provided", nil))
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(m.key)) != 1 {
			handleError(w, errors.NewAuthError("invalid api key", nil))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func extractToken(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func handleError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
}
