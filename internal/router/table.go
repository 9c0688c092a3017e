// Package router provides the gateway's route table: an ordered mapping from
// URL path prefixes to owning modules.
package router

import (
	"sort"
	"strings"

	"github.com/midiaexterior/gateway/internal/config"
)

// Table resolves request paths to their owning module. Routes are sorted
// longest-prefix-first at construction time, so resolution is independent of
// declaration order when prefixes overlap. The table is immutable after
// construction.
type Table struct {
	routes []config.Route
}

// NewTable builds a route table from the configured routes.
func NewTable(routes []config.Route) *Table {
	sorted := make([]config.Route, len(routes))
	copy(sorted, routes)

	// Stable sort keeps declaration order for equal-length prefixes.
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].PathPrefix) > len(sorted[j].PathPrefix)
	})

	return &Table{routes: sorted}
}

// Find returns the most specific route whose prefix matches the path, or nil
// if the path is not gateway-managed. Matching is boundary-aware: /api/v1/placas
// matches /api/v1/placas and /api/v1/placas/42 but not /api/v1/placasx.
func (t *Table) Find(path string) *config.Route {
	for i := range t.routes {
		if matchPrefix(path, t.routes[i].PathPrefix) {
			return &t.routes[i]
		}
	}
	return nil
}

// Routes returns the routes in resolution order.
func (t *Table) Routes() []config.Route {
	out := make([]config.Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// matchPrefix checks a boundary-aware path prefix match.
func matchPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	if len(path) == len(prefix) {
		return true
	}
	return strings.HasSuffix(prefix, "/") || path[len(prefix)] == '/'
}
