// Command ledger-audit consumes ledger change events from AMQP and writes
// one structured log line per committed operation, followed by the current
// state of every entity it touched.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/backend"
	"ledger/internal/cache"
	"ledger/internal/cli"
	"ledger/internal/log"
	"ledger/internal/worker"
)

const (
	seenEvents = 10000
	seenTTL    = time.Hour
	sweepEvery = 5 * time.Minute
)

func main() {
	cli.LoadEnvFile()
	bootstrap := cli.SetupLogger("info", "text")
	cfg := cli.LoadAndValidateConfig(bootstrap)

	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat).WithComponent(log.ComponentAudit)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the audit consumer")
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	// The consumer only reads: no publisher and no distributed locks.
	storeCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	storeCfg.AMQPURL = ""
	storeCfg.RedisURL = ""
	components, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend)).Create(ctx, storeCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer components.Cleanup()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP))
	if err != nil {
		logger.Error("Failed to connect to AMQP", log.FieldError, err)
		stop()
		_ = components.Cleanup()
		os.Exit(1)
	}
	defer client.Close()

	seen := cache.NewLRUCache[struct{}](seenEvents, seenTTL)
	go cache.Sweep(ctx, sweepEvery, func(removed int) {
		if removed > 0 {
			logger.Debug("Expired seen events", "removed", removed, "remaining", seen.Size())
		}
	}, seen)

	w := worker.NewAuditWorker(components.Store, seen, logger)

	logger.Info("Starting ledger audit consumer",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue,
		log.FieldBackend, cfg.DataBackend)

	if err := client.ConsumeEvents(ctx, w.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped", log.FieldError, err)
		stop()
		_ = client.Close()
		_ = components.Cleanup()
		os.Exit(1)
	}
	logger.Info("Audit consumer stopped")
}
