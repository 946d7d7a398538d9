package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"ledger/internal/amqp"
	"ledger/internal/lock"
	"ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/storage"
	"ledger/internal/storage/memory"
	"ledger/internal/storage/postgres"
	"ledger/internal/storage/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// Create implements Factory.Create. On error every resource opened so far
// is released before returning.
func (f *DefaultFactory) Create(ctx context.Context, config Config) (_ *Components, err error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var cleanups []CleanupFunc
	cleanup := func() error {
		var errs []error
		for i := len(cleanups) - 1; i >= 0; i-- {
			errs = append(errs, cleanups[i]())
		}
		return errors.Join(errs...)
	}
	defer func() {
		if err != nil {
			_ = cleanup()
		}
	}()

	store, err := f.createStore(ctx, config)
	if err != nil {
		return nil, err
	}
	cleanups = append(cleanups, store.Close)

	locks, closeLocks, err := f.createLocks(ctx, config)
	if err != nil {
		return nil, err
	}
	if closeLocks != nil {
		cleanups = append(cleanups, closeLocks)
	}

	events := f.createPublisher(config)
	if c, ok := events.(interface{ Close() error }); ok {
		cleanups = append(cleanups, c.Close)
	}

	return &Components{
		Store:   store,
		Locks:   locks,
		Events:  events,
		Cleanup: cleanup,
	}, nil
}

func (f *DefaultFactory) createStore(ctx context.Context, config Config) (storage.Store, error) {
	switch config.Type {
	case SQLiteBackend:
		store, err := sqlite.Open(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return store, nil

	case PostgresBackend:
		store, err := postgres.Open(ctx, config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
		}
		f.logger.Info("Initialized Postgres backend")
		return store, nil

	case MemoryBackend:
		f.logger.Warn("Initialized memory backend; data is lost on restart")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createLocks(ctx context.Context, config Config) (lock.Manager, CleanupFunc, error) {
	if config.RedisURL == "" {
		f.logger.Info("Using in-process row locks")
		return lock.NewLocal(), nil, nil
	}

	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	lockOpts := lock.DefaultRedisOptions()
	if config.LockTTL > 0 {
		lockOpts.Expiry = config.LockTTL
	}
	if config.LockTries > 0 {
		lockOpts.Tries = config.LockTries
	}
	mgr, err := lock.NewRedis(client, lockOpts, f.logger)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	f.logger.Info("Using Redis row locks", "ttl", lockOpts.Expiry, "tries", lockOpts.Tries)
	return mgr, client.Close, nil
}

// createPublisher never fails: a broker that is down at startup leaves the
// ledger running without events, as the broker is not a source of truth.
func (f *DefaultFactory) createPublisher(config Config) services.EventPublisher {
	if config.AMQPURL == "" {
		return services.NopPublisher{}
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without ledger events", log.FieldError, err)
		return services.NopPublisher{}
	}

	pub, err := amqp.NewBreakerPublisher(client, amqp.DefaultBreakerConfig(), f.logger)
	if err != nil {
		_ = client.Close()
		f.logger.Warn("Failed to initialize event circuit breaker", log.FieldError, err)
		return services.NopPublisher{}
	}

	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return pub
}
