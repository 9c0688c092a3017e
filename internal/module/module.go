// Package module provides the static catalogue of business modules fronted
// by the gateway. The catalogue is assembled once at process start and is
// read-only afterwards.
package module

import "net/http"

// Definition describes a single business module.
type Definition struct {
	// Name is the unique module identifier.
	Name string

	// BasePath is the URL path prefix the module owns.
	BasePath string

	// Handler is the module's opaque handler chain.
	Handler http.Handler

	// Domain groups modules for introspection (e.g. crm, sales, system).
	Domain string

	// Enabled controls whether the module is mounted at all. Disabled
	// modules are never registered and never receive traffic.
	Enabled bool
}

// Registry is an ordered, immutable catalogue of module definitions.
type Registry struct {
	modules []Definition
	byName  map[string]Definition
}

// NewRegistry creates a registry from the given definitions, preserving
// declaration order.
func NewRegistry(modules []Definition) *Registry {
	byName := make(map[string]Definition, len(modules))
	for _, m := range modules {
		byName[m.Name] = m
	}
	return &Registry{
		modules: modules,
		byName:  byName,
	}
}

// List returns the full catalogue in declaration order.
func (r *Registry) List() []Definition {
	out := make([]Definition, len(r.modules))
	copy(out, r.modules)
	return out
}

// Enabled returns the enabled modules in declaration order.
func (r *Registry) Enabled() []Definition {
	var out []Definition
	for _, m := range r.modules {
		if m.Enabled {
			out = append(out, m)
		}
	}
	return out
}

// Get returns the module with the given name.
func (r *Registry) Get(name string) (Definition, bool) {
	m, ok := r.byName[name]
	return m, ok
}

// GroupByDomain groups modules by domain tag, preserving declaration order
// within each group.
func (r *Registry) GroupByDomain() map[string][]Definition {
	groups := make(map[string][]Definition)
	for _, m := range r.modules {
		groups[m.Domain] = append(groups[m.Domain], m)
	}
	return groups
}

// Count returns total, enabled and disabled module counts.
func (r *Registry) Count() (total, enabled, disabled int) {
	total = len(r.modules)
	for _, m := range r.modules {
		if m.Enabled {
			enabled++
		}
	}
	return total, enabled, total - enabled
}
