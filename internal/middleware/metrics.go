package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// RequestRecorder records per-request metrics.
type RequestRecorder interface {
	RecordRequest(method, path, status string, duration time.Duration)
}

// Metrics returns a middleware that records request counts and
// latencies for every handled request.
func Metrics(recorder RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := wrapResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			recorder.RecordRequest(
				r.Method,
				r.URL.Path,
				strconv.Itoa(wrapped.status),
				time.Since(start),
			)
		})
	}
}
