package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"ledger/internal/log"
)

const keyPrefix = "ledger:lock:"

// RedisOptions configures distributed lock acquisition.
type RedisOptions struct {
	// Expiry bounds how long a crashed holder can block a row.
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Expiry:     10 * time.Second,
		Tries:      32,
		RetryDelay: 50 * time.Millisecond,
	}
}

// Redis coordinates row locks across service instances with redsync.
type Redis struct {
	rs     *redsync.Redsync
	opts   RedisOptions
	logger *log.Logger
}

var _ Manager = (*Redis)(nil)

func NewRedis(client redis.UniversalClient, opts RedisOptions, logger *log.Logger) (*Redis, error) {
	if client == nil {
		return nil, errors.New("lock: redis client is nil")
	}
	if opts.Expiry <= 0 {
		return nil, errors.New("lock: expiry must be greater than 0")
	}
	if opts.Tries < 1 {
		return nil, errors.New("lock: tries must be at least 1")
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Redis{
		rs:     redsync.New(goredis.NewPool(client)),
		opts:   opts,
		logger: logger.WithComponent(log.ComponentLock),
	}, nil
}

func (r *Redis) WithLock(ctx context.Context, keys []string, fn func(context.Context) error) error {
	if fn == nil {
		return ErrNilFn
	}
	keys = normalize(keys)

	held := make([]*redsync.Mutex, 0, len(keys))
	defer func() {
		// Release with a fresh context so a cancelled request still unlocks.
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		for i := len(held) - 1; i >= 0; i-- {
			m := held[i]
			if ok, err := m.UnlockContext(rctx); !ok || err != nil {
				r.logger.WarnContext(ctx, "failed to release lock",
					log.FieldLockKeys, m.Name(), log.FieldError, err)
			}
		}
	}()

	for _, k := range keys {
		m := r.rs.NewMutex(keyPrefix+k,
			redsync.WithExpiry(r.opts.Expiry),
			redsync.WithTries(r.opts.Tries),
			redsync.WithRetryDelay(r.opts.RetryDelay),
		)
		if err := m.LockContext(ctx); err != nil {
			r.logger.DebugContext(ctx, "failed to acquire lock", log.FieldLockKeys, k, log.FieldError, err)
			return fmt.Errorf("%w: %s: %w", ErrNotAcquired, k, err)
		}
		held = append(held, m)
	}

	r.logger.DebugContext(ctx, "locks acquired", log.FieldLockKeys, keys)
	return fn(ctx)
}
