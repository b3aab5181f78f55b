package middleware

import "net/http"

// MaxRequestSize caps request bodies at maxBytes. Handlers reading past the
// cap get an error from http.MaxBytesReader, which also closes the
// connection.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
