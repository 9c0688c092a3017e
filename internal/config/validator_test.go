package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midiaexterior/gateway/internal/util"
)

func validConfig() *GatewayConfig {
	cfg := DefaultConfig()
	cfg.Routes = []Route{
		{PathPrefix: "/api/v1/placas", Module: "placas"},
	}
	return cfg
}

func TestValidateConfig_Valid(t *testing.T) {
	assert.NoError(t, ValidateConfig(validConfig()))
}

func TestValidateConfig_Nil(t *testing.T) {
	assert.Error(t, ValidateConfig(nil))
}

func TestValidateConfig_BadPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 70000
	assert.Error(t, ValidateConfig(cfg))
}

func TestValidateConfig_NonPositiveTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.DefaultTimeout = 0
	assert.Error(t, ValidateConfig(cfg))
}

func TestValidateConfig_ThresholdTooLow(t *testing.T) {
	cfg := validConfig()
	cfg.CircuitBreaker.FailureThreshold = 0
	assert.Error(t, ValidateConfig(cfg))
}

func TestValidateConfig_NonPositiveCooldown(t *testing.T) {
	cfg := validConfig()
	cfg.CircuitBreaker.Cooldown = Duration(-time.Second)
	assert.Error(t, ValidateConfig(cfg))
}

func TestValidateConfig_Routes(t *testing.T) {
	tests := []struct {
		name  string
		route Route
	}{
		{"empty prefix", Route{PathPrefix: "", Module: "placas"}},
		{"no leading slash", Route{PathPrefix: "api/v1/placas", Module: "placas"}},
		{"empty module", Route{PathPrefix: "/api/v1/placas", Module: ""}},
		{"zero rps", Route{PathPrefix: "/api/v1/placas", Module: "placas",
			RateLimit: &RateLimitConfig{RequestsPerSecond: 0}}},
		{"negative burst", Route{PathPrefix: "/api/v1/placas", Module: "placas",
			RateLimit: &RateLimitConfig{RequestsPerSecond: 10, Burst: -1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Routes = []Route{tt.route}
			assert.Error(t, ValidateConfig(cfg))
		})
	}
}

func TestValidateConfig_DuplicatePrefix(t *testing.T) {
	cfg := validConfig()
	cfg.Routes = append(cfg.Routes, Route{PathPrefix: "/api/v1/placas", Module: "outro"})
	assert.Error(t, ValidateConfig(cfg))
}

func TestValidateConfig_RedisStoreRequiresAddress(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimitStore = RateLimitStoreConfig{Type: "redis"}
	assert.Error(t, ValidateConfig(cfg))

	cfg.RateLimitStore.RedisAddress = "localhost:6379"
	assert.NoError(t, ValidateConfig(cfg))
}

func TestValidateConfig_UnknownStoreType(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimitStore = RateLimitStoreConfig{Type: "memcached"}
	require.Error(t, ValidateConfig(cfg))
}

func TestValidateConfig_ErrorsMatchSentinel(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0

	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrConfigInvalid))
}
