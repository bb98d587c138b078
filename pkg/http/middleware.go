// Package http pkg/http/middleware.go
package http

import (
	"net/http"
	"strings"

	"github.com/carverauto/appradar/pkg/models"
)

// CommonMiddleware applies the CORS policy and answers preflight requests.
func CommonMiddleware(next http.Handler, cors models.CORSConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := allowedOrigin(r.Header.Get("Origin"), cors.AllowedOrigins)
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if cors.AllowCredentials {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allowedOrigin resolves which origin value to echo back. An empty
// allowlist permits any origin.
func allowedOrigin(requestOrigin string, allowed []string) string {
	if len(allowed) == 0 {
		return "*"
	}

	for _, candidate := range allowed {
		if candidate == "*" {
			return "*"
		}

		if strings.EqualFold(candidate, requestOrigin) {
			return requestOrigin
		}
	}

	return ""
}
