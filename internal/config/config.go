// Package config provides configuration management for the gateway.
// Configuration is loaded once at startup from a YAML file with
// environment-variable substitution and is read-only afterwards.
package config

import "time"

// Default configuration values.
const (
	// DefaultHTTPPort is the default listen port.
	DefaultHTTPPort = 8080

	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultFailureThreshold is the default number of failures that opens a circuit.
	DefaultFailureThreshold = 5

	// DefaultCooldown is the default duration an open circuit stays open.
	DefaultCooldown = 30 * time.Second

	// DefaultShutdownTimeout is the default graceful shutdown timeout.
	DefaultShutdownTimeout = 15 * time.Second
)

// GatewayConfig holds all configuration settings for the gateway.
type GatewayConfig struct {
	// Server settings
	Server ServerConfig `yaml:"server" json:"server"`

	// DefaultTimeout is the per-request timeout the gateway races against
	// every routed handler chain.
	DefaultTimeout Duration `yaml:"defaultTimeout" json:"defaultTimeout"`

	// CircuitBreaker holds the failure-threshold policy.
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker" json:"circuitBreaker"`

	// Routes is the ordered list of gateway-managed path prefixes.
	Routes []Route `yaml:"routes" json:"routes"`

	// RateLimitStore selects the backing store for route rate limiters.
	RateLimitStore RateLimitStoreConfig `yaml:"rateLimitStore" json:"rateLimitStore"`

	// Observability settings
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`

	// Verbose enables per-domain module listings at startup.
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port" json:"port"`
	ReadTimeout     Duration `yaml:"readTimeout,omitempty" json:"readTimeout,omitempty"`
	WriteTimeout    Duration `yaml:"writeTimeout,omitempty" json:"writeTimeout,omitempty"`
	IdleTimeout     Duration `yaml:"idleTimeout,omitempty" json:"idleTimeout,omitempty"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout,omitempty" json:"shutdownTimeout,omitempty"`
}

// CircuitBreakerConfig represents the circuit breaker policy.
type CircuitBreakerConfig struct {
	// FailureThreshold is the failure count at which a module's circuit opens.
	FailureThreshold int `yaml:"failureThreshold" json:"failureThreshold"`

	// Cooldown is how long an open circuit stays open before it
	// unconditionally closes again.
	Cooldown Duration `yaml:"cooldown" json:"cooldown"`
}

// Route represents a single gateway-managed path prefix.
type Route struct {
	// PathPrefix is the URL prefix owned by the module.
	PathPrefix string `yaml:"pathPrefix" json:"pathPrefix"`

	// Module is the name of the owning module.
	Module string `yaml:"module" json:"module"`

	// RequiresAuth marks the route as requiring authentication. The gateway
	// only reports this flag; enforcement belongs to the module's own chain.
	RequiresAuth bool `yaml:"requiresAuth,omitempty" json:"requiresAuth,omitempty"`

	// RateLimit optionally attaches a rate limit to the route.
	RateLimit *RateLimitConfig `yaml:"rateLimit,omitempty" json:"rateLimit,omitempty"`
}

// RateLimitConfig represents a per-route rate limit.
type RateLimitConfig struct {
	RequestsPerSecond int `yaml:"requestsPerSecond" json:"requestsPerSecond"`
	Burst             int `yaml:"burst,omitempty" json:"burst,omitempty"`
}

// RateLimitStoreConfig selects the backing store for rate limiters.
type RateLimitStoreConfig struct {
	// Type is "memory" (default) or "redis".
	Type string `yaml:"type,omitempty" json:"type,omitempty"`

	RedisAddress  string `yaml:"redisAddress,omitempty" json:"redisAddress,omitempty"`
	RedisPassword string `yaml:"redisPassword,omitempty" json:"redisPassword,omitempty"`
	RedisDB       int    `yaml:"redisDB,omitempty" json:"redisDB,omitempty"`
}

// ObservabilityConfig holds logging and tracing settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"logLevel,omitempty" json:"logLevel,omitempty"`
	LogFormat string `yaml:"logFormat,omitempty" json:"logFormat,omitempty"`

	TracingEnabled    bool    `yaml:"tracingEnabled,omitempty" json:"tracingEnabled,omitempty"`
	OTLPEndpoint      string  `yaml:"otlpEndpoint,omitempty" json:"otlpEndpoint,omitempty"`
	TracingSampleRate float64 `yaml:"tracingSampleRate,omitempty" json:"tracingSampleRate,omitempty"`
	ServiceName       string  `yaml:"serviceName,omitempty" json:"serviceName,omitempty"`
}

// DefaultConfig returns a GatewayConfig with default values.
func DefaultConfig() *GatewayConfig {
	return &GatewayConfig{
		Server: ServerConfig{
			Port:            DefaultHTTPPort,
			ShutdownTimeout: Duration(DefaultShutdownTimeout),
		},
		DefaultTimeout: Duration(DefaultTimeout),
		CircuitBreaker: CircuitBreakerConfig{
			FailureThreshold: DefaultFailureThreshold,
			Cooldown:         Duration(DefaultCooldown),
		},
		RateLimitStore: RateLimitStoreConfig{Type: "memory"},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			LogFormat:   "json",
			ServiceName: "gateway",
		},
	}
}

// applyDefaults fills zero values with defaults.
func (c *GatewayConfig) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultHTTPPort
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}
	if c.DefaultTimeout == 0 {
		c.DefaultTimeout = Duration(DefaultTimeout)
	}
	if c.CircuitBreaker.FailureThreshold == 0 {
		c.CircuitBreaker.FailureThreshold = DefaultFailureThreshold
	}
	if c.CircuitBreaker.Cooldown == 0 {
		c.CircuitBreaker.Cooldown = Duration(DefaultCooldown)
	}
	if c.RateLimitStore.Type == "" {
		c.RateLimitStore.Type = "memory"
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
	if c.Observability.LogFormat == "" {
		c.Observability.LogFormat = "json"
	}
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = "gateway"
	}
}
