// Package util provides shared helpers for the gateway.
//
// # Error Conventions
//
// This project follows a standardized error pattern across all packages:
//
//   - Sentinel errors (errors.New) for well-known, stable conditions
//     that callers check with errors.Is(). Example: ErrCircuitOpen.
//   - Structured error types for context-rich errors that carry
//     additional fields (e.g., ConfigError, ServerError).
//   - fmt.Errorf with %w for ad-hoc wrapping that adds context to an
//     existing error without introducing a new type.
package util

import "net/http"

// StatusCapturingResponseWriter wraps http.ResponseWriter to track the final
// status code. The gateway middleware uses it to classify a response exactly
// once after the handler chain has completed.
type StatusCapturingResponseWriter struct {
	http.ResponseWriter
	StatusCode    int
	BytesWritten  int
	HeaderWritten bool
}

// NewStatusCapturingResponseWriter creates a new StatusCapturingResponseWriter
// wrapping the provided http.ResponseWriter with a default status of 200 OK.
func NewStatusCapturingResponseWriter(w http.ResponseWriter) *StatusCapturingResponseWriter {
	return &StatusCapturingResponseWriter{
		ResponseWriter: w,
		StatusCode:     http.StatusOK,
	}
}

// WriteHeader captures the status code and writes it to the underlying writer.
// Duplicate calls are ignored so the first writer wins.
func (w *StatusCapturingResponseWriter) WriteHeader(code int) {
	if w.HeaderWritten {
		return
	}
	w.StatusCode = code
	w.HeaderWritten = true
	w.ResponseWriter.WriteHeader(code)
}

// Write writes data to the underlying writer and marks the header as written.
func (w *StatusCapturingResponseWriter) Write(b []byte) (int, error) {
	if !w.HeaderWritten {
		w.HeaderWritten = true
	}
	n, err := w.ResponseWriter.Write(b)
	w.BytesWritten += n
	return n, err
}

// Flush implements http.Flusher for streaming support.
func (w *StatusCapturingResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

var _ http.Flusher = (*StatusCapturingResponseWriter)(nil)
