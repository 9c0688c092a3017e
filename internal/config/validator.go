package config

import (
	"fmt"
	"strings"

	"github.com/midiaexterior/gateway/internal/util"
)

// ValidateConfig validates a loaded configuration.
func ValidateConfig(cfg *GatewayConfig) error {
	if cfg == nil {
		return util.NewConfigError("", "configuration is nil")
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return util.NewConfigError("server.port",
			fmt.Sprintf("invalid port %d", cfg.Server.Port))
	}

	if cfg.DefaultTimeout <= 0 {
		return util.NewConfigError("defaultTimeout", "must be positive")
	}

	if cfg.CircuitBreaker.FailureThreshold < 1 {
		return util.NewConfigError("circuitBreaker.failureThreshold",
			"must be at least 1")
	}

	if cfg.CircuitBreaker.Cooldown <= 0 {
		return util.NewConfigError("circuitBreaker.cooldown", "must be positive")
	}

	if err := validateRoutes(cfg.Routes); err != nil {
		return err
	}

	switch cfg.RateLimitStore.Type {
	case "", "memory":
	case "redis":
		if cfg.RateLimitStore.RedisAddress == "" {
			return util.NewConfigError("rateLimitStore.redisAddress",
				"required when type is redis")
		}
	default:
		return util.NewConfigError("rateLimitStore.type",
			fmt.Sprintf("unknown store type %q", cfg.RateLimitStore.Type))
	}

	return nil
}

// validateRoutes validates the route list.
func validateRoutes(routes []Route) error {
	seen := make(map[string]bool, len(routes))

	for i, route := range routes {
		field := fmt.Sprintf("routes[%d]", i)

		if route.PathPrefix == "" {
			return util.NewConfigError(field+".pathPrefix", "must not be empty")
		}
		if !strings.HasPrefix(route.PathPrefix, "/") {
			return util.NewConfigError(field+".pathPrefix",
				fmt.Sprintf("%q must start with /", route.PathPrefix))
		}
		if route.Module == "" {
			return util.NewConfigError(field+".module", "must not be empty")
		}
		if seen[route.PathPrefix] {
			return util.NewConfigError(field+".pathPrefix",
				fmt.Sprintf("duplicate prefix %q", route.PathPrefix))
		}
		seen[route.PathPrefix] = true

		if rl := route.RateLimit; rl != nil {
			if rl.RequestsPerSecond < 1 {
				return util.NewConfigError(field+".rateLimit.requestsPerSecond",
					"must be at least 1")
			}
			if rl.Burst < 0 {
				return util.NewConfigError(field+".rateLimit.burst",
					"must not be negative")
			}
		}
	}

	return nil
}
