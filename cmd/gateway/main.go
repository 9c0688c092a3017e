// Package main is the entry point for the gateway.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/midiaexterior/gateway/internal/config"
	"github.com/midiaexterior/gateway/internal/gateway"
	"github.com/midiaexterior/gateway/internal/module"
	"github.com/midiaexterior/gateway/internal/observability"
	"github.com/midiaexterior/gateway/internal/ratelimit"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	verbose     bool
	showVersion bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		printVersion()
		return
	}

	logger := initLogger(flags)
	defer func() { _ = logger.Sync() }()

	cfg := loadAndValidateConfig(flags, logger)

	if err := run(cfg, flags, logger); err != nil {
		logger.Fatal("gateway failed", observability.Error(err))
	}
}

// parseFlags parses command line flags, with environment fallbacks.
func parseFlags() cliFlags {
	configPath := flag.String("config", getEnvOrDefault("GATEWAY_CONFIG_PATH", "configs/gateway.yaml"),
		"Path to configuration file")
	logLevel := flag.String("log-level", getEnvOrDefault("GATEWAY_LOG_LEVEL", ""),
		"Log level (debug, info, warn, error); overrides config")
	logFormat := flag.String("log-format", getEnvOrDefault("GATEWAY_LOG_FORMAT", ""),
		"Log format (json, console); overrides config")
	verbose := flag.Bool("verbose", false, "Log per-domain module listings at startup")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	return cliFlags{
		configPath:  *configPath,
		logLevel:    *logLevel,
		logFormat:   *logFormat,
		verbose:     *verbose,
		showVersion: *showVersion,
	}
}

// printVersion prints version information.
func printVersion() {
	fmt.Printf("gateway version %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, def string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return def
}

// initLogger initializes the logger from flags, falling back to defaults
// until the config file is loaded.
func initLogger(flags cliFlags) observability.Logger {
	logCfg := observability.DefaultLogConfig()
	if flags.logLevel != "" {
		logCfg.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		logCfg.Format = flags.logFormat
	}

	logger, err := observability.NewLogger(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	observability.SetGlobalLogger(logger)
	return logger
}

// loadAndValidateConfig loads the configuration and applies flag overrides.
func loadAndValidateConfig(flags cliFlags, logger observability.Logger) *config.GatewayConfig {
	logger.Info("starting gateway",
		observability.String("version", version),
		observability.String("config", flags.configPath),
	)

	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", observability.Error(err))
	}

	if flags.verbose {
		cfg.Verbose = true
	}
	if flags.logLevel != "" {
		cfg.Observability.LogLevel = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Observability.LogFormat = flags.logFormat
	}

	if err := config.ValidateConfig(cfg); err != nil {
		logger.Fatal("invalid configuration", observability.Error(err))
	}

	logger.Info("configuration loaded",
		observability.Int("routes", len(cfg.Routes)),
		observability.Duration("default_timeout", cfg.DefaultTimeout.Duration()),
		observability.Int("failure_threshold", cfg.CircuitBreaker.FailureThreshold),
		observability.Duration("cooldown", cfg.CircuitBreaker.Cooldown.Duration()),
	)

	return cfg
}

// run assembles the gateway and serves until a shutdown signal arrives.
func run(cfg *config.GatewayConfig, flags cliFlags, logger observability.Logger) error {
	tracer, err := observability.NewTracer(observability.TracerConfig{
		ServiceName:  cfg.Observability.ServiceName,
		OTLPEndpoint: cfg.Observability.OTLPEndpoint,
		SamplingRate: cfg.Observability.TracingSampleRate,
		Enabled:      cfg.Observability.TracingEnabled,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}

	factory, err := ratelimit.NewFactory(cfg.RateLimitStore, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize rate limit store: %w", err)
	}
	defer func() { _ = factory.Close() }()

	registry := module.NewRegistry(module.Catalog(stubHandlerProvider()))

	gw, err := gateway.New(cfg, registry,
		gateway.WithLogger(logger),
		gateway.WithTracer(tracer),
		gateway.WithRateLimitFactory(factory),
	)
	if err != nil {
		return fmt.Errorf("failed to assemble gateway: %w", err)
	}

	server := gateway.NewServer(cfg.Server, gw, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher, err := config.NewWatcher(flags.configPath, config.WithWatcherLogger(logger))
	if err != nil {
		logger.Warn("config watcher unavailable", observability.Error(err))
	} else {
		if err := watcher.Start(ctx); err != nil {
			logger.Warn("config watcher failed to start", observability.Error(err))
		} else {
			defer watcher.Stop()
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		cfg.Server.ShutdownTimeout.Duration())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	if err := tracer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("tracer shutdown failed", observability.Error(err))
	}

	logger.Info("gateway stopped")
	return nil
}
