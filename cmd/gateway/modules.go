package main

import (
	"encoding/json"
	"net/http"

	"github.com/midiaexterior/gateway/internal/module"
)

// stubHandlerProvider returns the default handler chains for the standalone
// binary. In a full deployment each business module registers its own chain
// through gateway.New; the standalone binary answers with a routing echo so
// the gateway tier can be deployed and smoke-tested on its own.
func stubHandlerProvider() module.HandlerProvider {
	return func(name string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"module": name,
				"path":   r.URL.Path,
				"status": "ok",
			})
		})
	}
}
