package middleware

import (
	"crypto/subtle"
	"net/http"

	"mc-bridge-api/pkg/apierror"
)

// NewAPIKeyMiddleware guards the Minecraft REST API with a shared secret.
// Every request must carry the configured key in X-API-Key; anything else
// gets the standard 401 envelope. NO GLOBAL STATE - the key is passed via
// closure.
func NewAPIKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-API-Key")

			if apiKey == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				writeError(w, apierror.Unauthorized("Unauthorized"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	w.Write(err.ToJSON())
}
