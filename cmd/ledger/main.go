package main

import (
	"context"
	"os"
	"time"

	"ledger/internal/backend"
	"ledger/internal/cli"
	apphttp "ledger/internal/http"
	"ledger/internal/log"
	"ledger/internal/services"
)

func main() {
	cli.LoadEnvFile()
	bootstrap := cli.SetupLogger("info", "text")
	cfg := cli.LoadAndValidateConfig(bootstrap)

	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.WithComponent(log.ComponentBackend))
	components, err := factory.Create(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := components.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	ledger := services.NewLedgerService(components.Store, components.Locks, components.Events, logger.WithComponent(log.ComponentLedger))

	srv := apphttp.NewServer(":"+cfg.Port, ledger, apphttp.Options{
		Keys:               apphttp.StaticKeys(cfg.APIKeys),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger.WithComponent(log.ComponentHTTP),
	})

	logger.Info("Starting ledger server",
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend,
		"redis_locks", cfg.RedisURL != "",
		"events", cfg.AMQPURL != "",
		"api_keys", len(cfg.APIKeys))

	if err := cli.RunServer(ctx, logger, srv, 30*time.Second); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		stop()
		_ = components.Cleanup()
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
