package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DefaultCORSMaxAge is the preflight cache duration.
const DefaultCORSMaxAge = 12 * time.Hour

// CORS lets a browser front end on one of allowedOrigins call the auth
// endpoints with credentials, so the session cookie travels with the request.
// An empty allowedOrigins disables the middleware.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	origins := slices.Clone(allowedOrigins)
	allowMethods := strings.Join([]string{http.MethodGet, http.MethodOptions}, ", ")
	allowHeaders := strings.Join([]string{"Accept", "Content-Type", "X-Request-ID"}, ", ")
	maxAge := strconv.Itoa(int(DefaultCORSMaxAge.Seconds()))

	return func(next http.Handler) http.Handler {
		if len(origins) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !slices.Contains(origins, origin) {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Expose-Headers", "X-Request-ID")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Add("Vary", "Access-Control-Request-Method")
				h.Add("Vary", "Access-Control-Request-Headers")
				h.Set("Access-Control-Allow-Methods", allowMethods)
				h.Set("Access-Control-Allow-Headers", allowHeaders)
				h.Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
