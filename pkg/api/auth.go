package api

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
)

// AuthConfig holds authentication credentials for the API middleware.
type AuthConfig struct {
	Users   map[string]string // username -> password
	APIKeys map[string]bool   // valid API key tokens
}

// publicPaths are reachable without credentials so probes and scrapers
// keep working when auth is enabled.
var publicPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// authMiddleware guards the document and conversion endpoints with the
// configured users and API keys.
func authMiddleware(cfg AuthConfig, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if publicPaths[r.URL.Path] || cfg.authorized(r) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("WWW-Authenticate", `Basic realm="ucsconv API"`)
		writeError(w, http.StatusUnauthorized, "authentication required")
	})
}

// authorized checks the request credentials: an X-API-Key header, a
// Bearer token, or Basic user:password.
func (cfg AuthConfig) authorized(r *http.Request) bool {
	if key := r.Header.Get("X-API-Key"); key != "" && cfg.APIKeys[key] {
		return true
	}

	auth := r.Header.Get("Authorization")
	switch {
	case strings.HasPrefix(auth, "Bearer "):
		return cfg.APIKeys[strings.TrimPrefix(auth, "Bearer ")]
	case strings.HasPrefix(auth, "Basic "):
		payload, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
		if err != nil {
			return false
		}
		user, pass, ok := strings.Cut(string(payload), ":")
		if !ok {
			return false
		}
		want, known := cfg.Users[user]
		return known && subtle.ConstantTimeCompare([]byte(pass), []byte(want)) == 1
	}
	return false
}
