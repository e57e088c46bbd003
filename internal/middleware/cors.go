package middleware

import "net/http"

// CORS allows browser frontends on any origin to call the API.
//
// The API is consumed by a separately-hosted SPA, so cross-origin requests
// are the normal case, not the exception. Authentication rides in an explicit
// Authorization header (no cookies), which keeps a wildcard origin safe:
// a malicious page can send requests, but it has no token to send with them.
//
// Preflights (OPTIONS) are answered here and never reach the handlers.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
