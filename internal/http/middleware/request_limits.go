package middleware

import "net/http"

// RequestSizeLimit caps the request body at maxBytes. Handlers that decode
// bodies through httputil.Decode report the overflow as 413; anything reading
// the body directly gets the MaxBytesReader error.
func RequestSizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
