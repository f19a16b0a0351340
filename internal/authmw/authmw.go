// Package authmw provides HTTP middleware for API key authentication.
package authmw

import (
	"crypto/subtle"
	"net/http"
)

// Header carries the API key on authenticated requests.
const Header = "X-API-Key"

// APIKey returns middleware that validates the X-API-Key header against the
// expected value using constant-time equality. An empty expected key disables
// authentication entirely, for local and single-user deployments.
func APIKey(key string) func(http.Handler) http.Handler {
	expected := []byte(key)
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(Header))

			if subtle.ConstantTimeCompare(got, expected) != 1 {
				http.Error(w, `{"error":"missing or invalid api key"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
