package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/midiaexterior/gateway/internal/circuitbreaker"
	"github.com/midiaexterior/gateway/internal/config"
	"github.com/midiaexterior/gateway/internal/observability"
	"github.com/midiaexterior/gateway/internal/ratelimit"
	"github.com/midiaexterior/gateway/internal/router"
	"github.com/midiaexterior/gateway/internal/util"
)

// Gateway is the per-request entry point of the resilience tier. For every
// inbound request it resolves the owning module, enforces the route's rate
// limit, consults the module's circuit breaker, races the handler chain
// against the configured timeout, and records exactly one outcome per
// request against the breaker.
type Gateway struct {
	table    *router.Table
	breakers *circuitbreaker.Store
	timeout  time.Duration
	logger   observability.Logger
	tracer   *observability.Tracer

	// limiters is keyed by path prefix; built once at construction.
	limiters map[string]ratelimit.Limiter
}

// GatewayOption is a functional option for configuring the gateway.
type GatewayOption func(*Gateway)

// WithGatewayLogger sets the logger.
func WithGatewayLogger(logger observability.Logger) GatewayOption {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithGatewayTracer sets the tracer.
func WithGatewayTracer(tracer *observability.Tracer) GatewayOption {
	return func(g *Gateway) {
		g.tracer = tracer
	}
}

// NewGateway creates the gateway middleware over the given route table and
// circuit breaker store. Rate limiters are created up front for every route
// that configures one.
func NewGateway(
	table *router.Table,
	breakers *circuitbreaker.Store,
	timeout time.Duration,
	limiterFactory *ratelimit.Factory,
	opts ...GatewayOption,
) *Gateway {
	g := &Gateway{
		table:    table,
		breakers: breakers,
		timeout:  timeout,
		logger:   observability.NopLogger(),
		limiters: make(map[string]ratelimit.Limiter),
	}

	for _, opt := range opts {
		opt(g)
	}

	if limiterFactory != nil {
		for _, route := range table.Routes() {
			if route.RateLimit != nil {
				g.limiters[route.PathPrefix] = limiterFactory.NewLimiter(
					route.RateLimit.RequestsPerSecond,
					route.RateLimit.Burst,
				)
			}
		}
	}

	return g
}

// Middleware returns the gateway as an http.Handler wrapper.
func (g *Gateway) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := g.table.Find(r.URL.Path)
			if route == nil {
				// Not a gateway-managed path: no breaker, no timeout,
				// no gateway headers.
				next.ServeHTTP(w, r)
				return
			}

			g.serve(w, r, route, next)
		})
	}
}

// serve handles a request for a resolved route.
func (g *Gateway) serve(w http.ResponseWriter, r *http.Request, route *config.Route, next http.Handler) {
	start := time.Now()
	m := getGatewayMetrics()

	if limiter, ok := g.limiters[route.PathPrefix]; ok {
		key := route.Module + ":" + getClientIP(r)
		if !limiter.Allow(r.Context(), key) {
			m.rateLimitRejected.WithLabelValues(route.Module).Inc()
			g.logger.Warn("rate limit exceeded",
				observability.String("module", route.Module),
				observability.String("path", r.URL.Path),
				observability.Error(util.ErrRateLimited),
			)
			setGatewayHeaders(w.Header(), route.Module, time.Since(start))
			writeJSONError(w, http.StatusTooManyRequests, errorBody{
				Error:   "rate limit exceeded",
				Module:  route.Module,
				Message: fmt.Sprintf("rate limit exceeded for module %s", route.Module),
			})
			return
		}
	}

	if g.breakers.IsOpen(route.Module) {
		// Short-circuit: the handler is not invoked and no outcome is
		// recorded, so repeated rejections cannot re-trigger transitions.
		retryAfter := int(g.breakers.Cooldown().Seconds())
		m.shortCircuitsTotal.WithLabelValues(route.Module).Inc()
		g.logger.Warn("circuit open, request rejected",
			observability.String("module", route.Module),
			observability.String("path", r.URL.Path),
			observability.Error(util.ErrCircuitOpen),
		)
		header := w.Header()
		setGatewayHeaders(header, route.Module, time.Since(start))
		header.Set(HeaderRetryAfter, fmt.Sprintf("%d", retryAfter))
		writeJSONError(w, http.StatusServiceUnavailable, errorBody{
			Error:      "service unavailable",
			Message:    fmt.Sprintf("module %s is temporarily unavailable", route.Module),
			Module:     route.Module,
			RetryAfter: retryAfter,
		})
		return
	}

	g.forward(w, r, route, next, start)
}

// forward invokes the module's handler chain, racing it against the gateway
// timeout. Exactly one of success, failure or timeout is recorded against
// the module's breaker.
func (g *Gateway) forward(w http.ResponseWriter, r *http.Request, route *config.Route, next http.Handler, start time.Time) {
	breaker := g.breakers.Get(route.Module)
	m := getGatewayMetrics()

	ctx, cancel := context.WithTimeout(r.Context(), g.timeout)
	defer cancel()

	ctx = util.ContextWithModule(ctx, route.Module)
	ctx = util.ContextWithStartTime(ctx, start)

	var span trace.Span
	if g.tracer != nil {
		ctx, span = g.tracer.Start(ctx, "gateway.forward",
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("gateway.module", route.Module),
				attribute.String("http.path", r.URL.Path),
				attribute.String("http.method", r.Method),
			),
		)
		defer span.End()
	}

	r = r.WithContext(ctx)

	iw := newInterceptWriter(w, route.Module, start)
	done := make(chan struct{})

	go g.runHandler(iw, r, next, done)

	select {
	case <-done:
		// Handler finished first; the deferred cancel retires the timer so
		// it can never fire after the response has gone out.
		iw.ensureHeaders()
		status := iw.Status()
		elapsed := time.Since(start)

		if status >= http.StatusInternalServerError {
			breaker.RecordFailure()
			g.logger.Warn("module returned server error",
				observability.String("module", route.Module),
				observability.String("path", r.URL.Path),
				observability.Error(util.NewServerError(status)),
			)
		} else {
			// 4xx is a client problem, not module unhealthiness.
			breaker.RecordSuccess()
		}

		m.observeRequest(route.Module, status, elapsed)
		if span != nil {
			span.SetAttributes(attribute.Int("http.status_code", status))
		}

	case <-ctx.Done():
		// Deadline or cancellation fired first. Suppress any later write
		// from the handler before deciding what to record.
		firstWriter := iw.markTimedOut()
		elapsed := time.Since(start)

		if !firstWriter {
			// The handler finalized the response just as the timer fired;
			// the response that went out is the real one, so classify it
			// normally instead of as a timeout.
			status := iw.Status()
			if status >= http.StatusInternalServerError {
				breaker.RecordFailure()
			} else {
				breaker.RecordSuccess()
			}
			m.observeRequest(route.Module, status, elapsed)
			waitForHandler(done)
			return
		}

		if errors.Is(ctx.Err(), context.Canceled) {
			// The client went away before the deadline. The module never
			// got to answer, so this says nothing about its health: no
			// outcome is recorded and no body is written.
			g.logger.Debug("client canceled request",
				observability.String("module", route.Module),
				observability.String("path", r.URL.Path),
			)
			waitForHandler(done)
			return
		}

		setGatewayHeaders(w.Header(), route.Module, elapsed)
		writeJSONError(w, http.StatusGatewayTimeout, errorBody{
			Error:   "gateway timeout",
			Message: fmt.Sprintf("module %s did not respond within %s", route.Module, g.timeout),
			Module:  route.Module,
		})

		breaker.RecordFailure()
		m.timeoutsTotal.WithLabelValues(route.Module).Inc()
		m.observeRequest(route.Module, http.StatusGatewayTimeout, elapsed)
		if span != nil {
			span.SetAttributes(
				attribute.Int("http.status_code", http.StatusGatewayTimeout),
				attribute.Bool("gateway.timeout", true),
			)
		}

		g.logger.Warn("request timeout",
			observability.String("module", route.Module),
			observability.String("path", r.URL.Path),
			observability.Duration("timeout", g.timeout),
			observability.Error(util.ErrTimeout),
		)

		waitForHandler(done)
	}
}

// runHandler executes the handler chain in its own goroutine, converting
// panics into a 500 so the outcome observation still happens exactly once.
func (g *Gateway) runHandler(iw *interceptWriter, r *http.Request, next http.Handler, done chan struct{}) {
	defer func() {
		if rec := recover(); rec != nil {
			getGatewayMetrics().panicsRecovered.Inc()
			g.logger.Error("panic in module handler",
				observability.String("path", r.URL.Path),
				observability.Any("panic", rec),
			)
			writeJSONError(iw, http.StatusInternalServerError, errorBody{
				Error: "internal server error",
			})
		}
		close(done)
	}()

	next.ServeHTTP(iw, r)
}

// handlerGracePeriod bounds how long the timeout path waits for the handler
// goroutine after answering the client.
const handlerGracePeriod = 100 * time.Millisecond

// waitForHandler waits briefly for the handler goroutine to finish.
func waitForHandler(done chan struct{}) {
	select {
	case <-done:
	case <-time.After(handlerGracePeriod):
	}
}

// setGatewayHeaders attaches the module and elapsed-time headers.
func setGatewayHeaders(h http.Header, module string, elapsed time.Duration) {
	h.Set(HeaderGatewayModule, module)
	h.Set(HeaderResponseTime, elapsed.Round(time.Microsecond).String())
}

// interceptWriter wraps the response-send path. It attaches the gateway
// headers at the moment the response is finalized, captures the final status
// code for classification, and discards writes arriving after a timeout
// response has already been sent (first writer wins).
type interceptWriter struct {
	http.ResponseWriter
	module string
	start  time.Time

	mu          sync.Mutex
	status      int
	wroteHeader bool
	timedOut    bool
}

// newInterceptWriter creates an interceptWriter with a default 200 status.
func newInterceptWriter(w http.ResponseWriter, module string, start time.Time) *interceptWriter {
	return &interceptWriter{
		ResponseWriter: w,
		module:         module,
		start:          start,
		status:         http.StatusOK,
	}
}

// WriteHeader finalizes the response unless the timeout already did.
func (iw *interceptWriter) WriteHeader(code int) {
	iw.mu.Lock()
	if iw.timedOut || iw.wroteHeader {
		iw.mu.Unlock()
		return
	}
	iw.status = code
	iw.wroteHeader = true
	setGatewayHeaders(iw.ResponseWriter.Header(), iw.module, time.Since(iw.start))
	iw.mu.Unlock()

	iw.ResponseWriter.WriteHeader(code)
}

// Write writes the body unless the timeout response was already sent.
func (iw *interceptWriter) Write(b []byte) (int, error) {
	iw.mu.Lock()
	if iw.timedOut {
		iw.mu.Unlock()
		// Late write after timeout: swallow it, report success to the
		// handler so it does not surface a spurious error.
		return len(b), nil
	}
	if !iw.wroteHeader {
		iw.status = http.StatusOK
		iw.wroteHeader = true
		setGatewayHeaders(iw.ResponseWriter.Header(), iw.module, time.Since(iw.start))
		iw.mu.Unlock()
		iw.ResponseWriter.WriteHeader(http.StatusOK)
	} else {
		iw.mu.Unlock()
	}

	return iw.ResponseWriter.Write(b)
}

// Flush implements http.Flusher for streaming handlers.
func (iw *interceptWriter) Flush() {
	iw.mu.Lock()
	if iw.timedOut {
		iw.mu.Unlock()
		return
	}
	iw.mu.Unlock()

	if f, ok := iw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// ensureHeaders attaches the gateway headers when the handler finished
// without writing a response, so the implicit 200 still carries them.
func (iw *interceptWriter) ensureHeaders() {
	iw.mu.Lock()
	defer iw.mu.Unlock()
	if !iw.wroteHeader && !iw.timedOut {
		setGatewayHeaders(iw.ResponseWriter.Header(), iw.module, time.Since(iw.start))
	}
}

// Status returns the final status code.
func (iw *interceptWriter) Status() int {
	iw.mu.Lock()
	defer iw.mu.Unlock()
	return iw.status
}

// markTimedOut marks the writer as timed out. It reports true when no
// response has been written yet, i.e. the timeout path owns the response.
func (iw *interceptWriter) markTimedOut() bool {
	iw.mu.Lock()
	defer iw.mu.Unlock()
	first := !iw.wroteHeader
	iw.timedOut = true
	return first
}
