// Package gateway wires the middleware chain, the module catalogue and the
// introspection endpoints onto a single HTTP listener.
package gateway

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/midiaexterior/gateway/internal/circuitbreaker"
	"github.com/midiaexterior/gateway/internal/config"
	"github.com/midiaexterior/gateway/internal/introspect"
	"github.com/midiaexterior/gateway/internal/middleware"
	"github.com/midiaexterior/gateway/internal/module"
	"github.com/midiaexterior/gateway/internal/observability"
	"github.com/midiaexterior/gateway/internal/ratelimit"
	"github.com/midiaexterior/gateway/internal/router"
)

// Gateway is the assembled request-routing and resilience tier.
type Gateway struct {
	registry *module.Registry
	table    *router.Table
	breakers *circuitbreaker.Store
	handler  http.Handler
	logger   observability.Logger
}

// Option is a functional option for the gateway.
type Option func(*options)

type options struct {
	logger  observability.Logger
	tracer  *observability.Tracer
	factory *ratelimit.Factory
}

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracer sets the tracer used for request spans.
func WithTracer(tracer *observability.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithRateLimitFactory sets the rate limiter factory.
func WithRateLimitFactory(factory *ratelimit.Factory) Option {
	return func(o *options) {
		o.factory = factory
	}
}

// New assembles the gateway: route table, circuit breaker store, middleware
// chain, module mounts and introspection endpoints.
func New(cfg *config.GatewayConfig, registry *module.Registry, opts ...Option) (*Gateway, error) {
	o := &options{logger: observability.NopLogger()}
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger

	routes, err := resolveRoutes(cfg, registry, logger)
	if err != nil {
		return nil, err
	}

	table := router.NewTable(routes)
	breakers := circuitbreaker.NewStore(
		cfg.CircuitBreaker.FailureThreshold,
		cfg.CircuitBreaker.Cooldown.Duration(),
		circuitbreaker.WithLogger(logger),
	)

	gw := middleware.NewGateway(
		table,
		breakers,
		cfg.DefaultTimeout.Duration(),
		o.factory,
		middleware.WithGatewayLogger(logger),
		middleware.WithGatewayTracer(o.tracer),
	)

	mux := http.NewServeMux()
	mountModules(mux, registry, cfg.Verbose, logger)
	mountIntrospection(mux, breakers, table, registry, cfg, logger)

	// The gateway middleware runs before any module handler so that every
	// request passes route resolution first.
	chain := middleware.RequestID()(
		middleware.Logging(logger)(
			middleware.Recovery(logger)(
				gw.Middleware()(mux),
			),
		),
	)

	return &Gateway{
		registry: registry,
		table:    table,
		breakers: breakers,
		handler:  chain,
		logger:   logger,
	}, nil
}

// Handler returns the fully assembled HTTP handler.
func (g *Gateway) Handler() http.Handler {
	return g.handler
}

// Breakers exposes the circuit breaker store for host wiring and tests.
func (g *Gateway) Breakers() *circuitbreaker.Store {
	return g.breakers
}

// Table exposes the route table.
func (g *Gateway) Table() *router.Table {
	return g.table
}

// resolveRoutes returns the effective route list. Explicitly configured
// routes are used when present; otherwise the table is derived from the
// module catalogue. Either way, routes pointing at disabled or unknown
// modules are dropped so the table stays consistent with the registry.
func resolveRoutes(cfg *config.GatewayConfig, registry *module.Registry, logger observability.Logger) ([]config.Route, error) {
	if len(cfg.Routes) == 0 {
		var routes []config.Route
		for _, def := range registry.Enabled() {
			routes = append(routes, config.Route{
				PathPrefix: def.BasePath,
				Module:     def.Name,
			})
		}
		return routes, nil
	}

	var routes []config.Route
	for _, route := range cfg.Routes {
		def, ok := registry.Get(route.Module)
		if !ok {
			// Fail open on gateway metadata errors: an unroutable entry is
			// logged and dropped, it never breaks request handling.
			logger.Warn("route references unknown module, dropping",
				observability.String("prefix", route.PathPrefix),
				observability.String("module", route.Module),
			)
			continue
		}
		if !def.Enabled {
			logger.Info("route references disabled module, dropping",
				observability.String("prefix", route.PathPrefix),
				observability.String("module", route.Module),
			)
			continue
		}
		routes = append(routes, route)
	}

	return routes, nil
}

// mountModules mounts each enabled module's handler chain at its base path,
// in declaration order. Disabled modules are counted and skipped.
func mountModules(mux *http.ServeMux, registry *module.Registry, verbose bool, logger observability.Logger) {
	mounted, skipped := 0, 0
	for _, def := range registry.List() {
		if !def.Enabled {
			skipped++
			continue
		}
		if def.Handler == nil {
			logger.Warn("module has no handler chain, skipping",
				observability.String("module", def.Name),
			)
			skipped++
			continue
		}

		prefix := strings.TrimSuffix(def.BasePath, "/")
		mux.Handle(prefix, def.Handler)
		mux.Handle(prefix+"/", def.Handler)
		mounted++
	}

	logger.Info(fmt.Sprintf("%d modules active, %d skipped", mounted, skipped))

	if verbose {
		for domain, defs := range registry.GroupByDomain() {
			var names []string
			for _, def := range defs {
				if def.Enabled {
					names = append(names, def.Name)
				}
			}
			if len(names) > 0 {
				logger.Debug("domain modules",
					observability.String("domain", domain),
					observability.Strings("modules", names),
				)
			}
		}
	}
}

// mountIntrospection mounts the stats, health and modules endpoints at their
// reserved paths, plus the Prometheus metrics endpoint.
func mountIntrospection(
	mux *http.ServeMux,
	breakers *circuitbreaker.Store,
	table *router.Table,
	registry *module.Registry,
	cfg *config.GatewayConfig,
	logger observability.Logger,
) {
	h := introspect.NewHandler(breakers, table, registry, cfg, logger)

	mux.HandleFunc(introspect.StatsPath, h.Stats)
	mux.HandleFunc(introspect.HealthPath, h.Health)
	mux.HandleFunc(introspect.ModulesPath, h.Modules)
	mux.Handle("/metrics", promhttp.Handler())
}
