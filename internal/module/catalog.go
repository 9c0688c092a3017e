package module

import "net/http"

// HandlerProvider supplies the handler chain for a named module. The gateway
// treats handler chains as opaque collaborators; the host wiring (or a test)
// decides what actually serves each module.
type HandlerProvider func(name string) http.Handler

// Catalog builds the platform's module catalogue in mount order. Earlier
// entries take precedence when base paths overlap.
func Catalog(provider HandlerProvider) []Definition {
	defs := []Definition{
		{Name: "placas", BasePath: "/api/v1/placas", Domain: "crm", Enabled: true},
		{Name: "regioes", BasePath: "/api/v1/regioes", Domain: "crm", Enabled: true},
		{Name: "clientes", BasePath: "/api/v1/clientes", Domain: "crm", Enabled: true},
		{Name: "alugueis", BasePath: "/api/v1/alugueis", Domain: "sales", Enabled: true},
		{Name: "contratos", BasePath: "/api/v1/contratos", Domain: "sales", Enabled: true},
		{Name: "propostas", BasePath: "/api/v1/propostas", Domain: "sales", Enabled: true},
		// Report generation runs in the offline PDF worker; the HTTP
		// surface stays disabled until that worker is cut over.
		{Name: "relatorios", BasePath: "/api/v1/relatorios", Domain: "integrations", Enabled: false},
		{Name: "webhooks", BasePath: "/api/v1/webhooks", Domain: "integrations", Enabled: true},
		{Name: "admin", BasePath: "/api/v1/admin", Domain: "system", Enabled: true},
	}

	for i := range defs {
		defs[i].Handler = provider(defs[i].Name)
	}

	return defs
}
