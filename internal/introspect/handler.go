// Package introspect serves read-only views over the gateway's shared state:
// circuit breaker stats, health, and the module catalogue. Handlers never
// mutate circuit or registry state.
package introspect

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/midiaexterior/gateway/internal/circuitbreaker"
	"github.com/midiaexterior/gateway/internal/config"
	"github.com/midiaexterior/gateway/internal/module"
	"github.com/midiaexterior/gateway/internal/observability"
	"github.com/midiaexterior/gateway/internal/router"
)

// Reserved paths for the introspection endpoints. They sit outside every
// module's base path.
const (
	StatsPath   = "/_gateway/stats"
	HealthPath  = "/_gateway/health"
	ModulesPath = "/_gateway/modules"
)

// Handler serves the introspection endpoints.
type Handler struct {
	breakers *circuitbreaker.Store
	table    *router.Table
	registry *module.Registry
	cfg      *config.GatewayConfig
	logger   observability.Logger
}

// NewHandler creates an introspection handler.
func NewHandler(
	breakers *circuitbreaker.Store,
	table *router.Table,
	registry *module.Registry,
	cfg *config.GatewayConfig,
	logger observability.Logger,
) *Handler {
	return &Handler{
		breakers: breakers,
		table:    table,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
	}
}

// circuitEntry is one module's circuit state in the stats payload.
type circuitEntry struct {
	Module        string     `json:"module"`
	Status        string     `json:"status"`
	Failures      int        `json:"failures"`
	LastFailureAt *time.Time `json:"lastFailureAt"`
}

// routeEntry is the redacted view of a configured route. Rate limit
// internals are never exposed, only whether a limit is attached.
type routeEntry struct {
	Path         string `json:"path"`
	Module       string `json:"module"`
	RequiresAuth bool   `json:"requiresAuth"`
	RateLimited  bool   `json:"rateLimited"`
}

// statsResponse is the GET stats payload.
type statsResponse struct {
	Circuits []circuitEntry `json:"circuits"`
	Config   statsConfig    `json:"config"`
	Routes   []routeEntry   `json:"routes"`
}

type statsConfig struct {
	DefaultTimeout   string `json:"defaultTimeout"`
	FailureThreshold int    `json:"failureThreshold"`
	Cooldown         string `json:"cooldown"`
}

// Stats serves the circuit breaker and configuration stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	circuits := make([]circuitEntry, 0)
	for _, state := range h.breakers.Snapshot() {
		circuits = append(circuits, circuitEntry{
			Module:        state.Module,
			Status:        state.Status(),
			Failures:      state.Failures,
			LastFailureAt: state.LastFailureAt,
		})
	}

	routes := make([]routeEntry, 0)
	for _, route := range h.table.Routes() {
		routes = append(routes, routeEntry{
			Path:         route.PathPrefix,
			Module:       route.Module,
			RequiresAuth: route.RequiresAuth,
			RateLimited:  route.RateLimit != nil,
		})
	}

	h.writeJSON(w, statsResponse{
		Circuits: circuits,
		Config: statsConfig{
			DefaultTimeout:   h.cfg.DefaultTimeout.Duration().String(),
			FailureThreshold: h.breakers.FailureThreshold(),
			Cooldown:         h.breakers.Cooldown().String(),
		},
		Routes: routes,
	})
}

// healthResponse is the GET health payload.
type healthResponse struct {
	Status       string    `json:"status"`
	OpenCircuits []string  `json:"openCircuits"`
	Timestamp    time.Time `json:"timestamp"`
}

// Health reports degraded iff at least one circuit is open.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	open := h.breakers.OpenCircuits()
	if open == nil {
		open = []string{}
	}

	status := "healthy"
	if len(open) > 0 {
		status = "degraded"
	}

	h.writeJSON(w, healthResponse{
		Status:       status,
		OpenCircuits: open,
		Timestamp:    time.Now().UTC(),
	})
}

// moduleEntry is one module in the modules payload.
type moduleEntry struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// modulesResponse is the GET modules payload.
type modulesResponse struct {
	Total    int                      `json:"total"`
	Enabled  int                      `json:"enabled"`
	Disabled int                      `json:"disabled"`
	Domains  map[string][]moduleEntry `json:"domains"`
}

// Modules serves registry-derived stats.
func (h *Handler) Modules(w http.ResponseWriter, r *http.Request) {
	total, enabled, disabled := h.registry.Count()

	domains := make(map[string][]moduleEntry)
	for domain, defs := range h.registry.GroupByDomain() {
		entries := make([]moduleEntry, 0, len(defs))
		for _, def := range defs {
			entries = append(entries, moduleEntry{Name: def.Name, Enabled: def.Enabled})
		}
		domains[domain] = entries
	}

	h.writeJSON(w, modulesResponse{
		Total:    total,
		Enabled:  enabled,
		Disabled: disabled,
		Domains:  domains,
	})
}

// writeJSON writes a JSON response body.
func (h *Handler) writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode introspection response",
			observability.Error(err),
		)
	}
}
