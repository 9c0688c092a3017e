// Package middleware provides the gateway's HTTP middleware: the routing and
// resilience tier itself plus the ambient request ID, logging and recovery
// layers.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
)

// HTTP header constants.
const (
	// HeaderContentType is the Content-Type header name.
	HeaderContentType = "Content-Type"

	// HeaderRetryAfter is the Retry-After header name.
	HeaderRetryAfter = "Retry-After"

	// HeaderXRequestID is the X-Request-ID header name.
	HeaderXRequestID = "X-Request-ID"

	// HeaderGatewayModule names the module that owned the request.
	HeaderGatewayModule = "X-Gateway-Module"

	// HeaderResponseTime carries the elapsed wall-clock duration.
	HeaderResponseTime = "X-Response-Time"

	// HeaderXForwardedFor is the X-Forwarded-For header name.
	HeaderXForwardedFor = "X-Forwarded-For"

	// HeaderXRealIP is the X-Real-IP header name.
	HeaderXRealIP = "X-Real-IP"
)

// ContentTypeJSON is the JSON content type.
const ContentTypeJSON = "application/json"

// errorBody is the shape of every gateway-generated error response.
type errorBody struct {
	Error      string `json:"error"`
	Message    string `json:"message,omitempty"`
	Module     string `json:"module,omitempty"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

// writeJSONError writes a structured JSON error response.
func writeJSONError(w http.ResponseWriter, status int, body errorBody) {
	w.Header().Set(HeaderContentType, ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// getClientIP extracts the client IP from forwarding headers, falling back
// to the connection's remote address.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get(HeaderXForwardedFor); xff != "" {
		if idx := strings.Index(xff, ","); idx >= 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if realIP := r.Header.Get(HeaderXRealIP); realIP != "" {
		return realIP
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx >= 0 {
		return addr[:idx]
	}
	return addr
}
