package middleware

import (
	"net/http"
	"time"

	"github.com/midiaexterior/gateway/internal/observability"
	"github.com/midiaexterior/gateway/internal/util"
)

// Logging returns a middleware that logs every HTTP request with its final
// status, size and duration.
func Logging(logger observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := util.NewStatusCapturingResponseWriter(w)

			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			requestID := observability.RequestIDFromContext(r.Context())

			logger.Info("http request",
				observability.String("method", r.Method),
				observability.String("path", r.URL.Path),
				observability.Int("status", rw.StatusCode),
				observability.Int("size", rw.BytesWritten),
				observability.Duration("duration", duration),
				observability.String("remote_addr", r.RemoteAddr),
				observability.String("request_id", requestID),
			)
		})
	}
}
