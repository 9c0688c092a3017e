package middleware

import (
	"net/http"

	"github.com/midiaexterior/gateway/internal/observability"
	"github.com/midiaexterior/gateway/internal/util"
)

// Recovery returns a middleware that converts panics into a 500 response.
// It is the outermost error boundary: panics on non-routed paths (and any
// panic that escapes the gateway tier) end here instead of killing the
// connection.
func Recovery(logger observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := util.NewStatusCapturingResponseWriter(w)

			defer func() {
				if rec := recover(); rec != nil {
					getGatewayMetrics().panicsRecovered.Inc()
					logger.Error("panic recovered",
						observability.String("method", r.Method),
						observability.String("path", r.URL.Path),
						observability.Any("panic", rec),
					)

					if !rw.HeaderWritten {
						writeJSONError(rw, http.StatusInternalServerError, errorBody{
							Error: "internal server error",
						})
					}
				}
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
