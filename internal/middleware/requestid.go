package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/midiaexterior/gateway/internal/observability"
)

// RequestID returns a middleware that ensures every request carries an ID.
// An inbound X-Request-ID is preserved; otherwise a new UUID is generated.
// The ID is stored in the request context and echoed on the response.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := observability.ContextWithRequestID(r.Context(), requestID)
			r = r.WithContext(ctx)

			w.Header().Set(HeaderXRequestID, requestID)

			next.ServeHTTP(w, r)
		})
	}
}
