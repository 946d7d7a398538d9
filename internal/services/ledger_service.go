package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ledger/internal/core"
	"ledger/internal/lock"
	"ledger/internal/log"
	"ledger/internal/storage"
)

// LedgerService runs every ledger use case as lock, unit of work, publish.
type LedgerService struct {
	store  storage.Store
	locks  lock.Manager
	events EventPublisher
	logger *log.Logger
	slog   *log.StructuredLogger
	now    func() time.Time
}

func NewLedgerService(store storage.Store, locks lock.Manager, events EventPublisher, logger *log.Logger) *LedgerService {
	if locks == nil {
		locks = lock.NewLocal()
	}
	if events == nil {
		events = NopPublisher{}
	}
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentLedger)
	return &LedgerService{
		store:  store,
		locks:  locks,
		events: events,
		logger: logger,
		slog:   log.NewStructuredLogger(logger),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// mutation is the body of a use case. It returns every entity it wrote or deleted.
type mutation func(ctx context.Context, tx storage.Tx) ([]core.EntityRef, error)

func (s *LedgerService) run(ctx context.Context, op string, owner core.Owner, keys []string, fn mutation) error {
	if err := owner.Validate(); err != nil {
		return err
	}

	var touched []core.EntityRef
	err := s.locks.WithLock(ctx, keys, func(ctx context.Context) error {
		return s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
			var err error
			touched, err = fn(ctx, tx)
			return err
		})
	})
	if err != nil {
		err = translate(err)
		if !core.IsBusiness(err) || errors.Is(err, core.ErrConflict) {
			s.slog.LogError(ctx, "Ledger operation failed", err, log.ComponentLedger, op,
				log.NewFields().WithLedgerOp(string(owner), op, refStrings(touched)))
		}
		return err
	}

	s.slog.LogLedgerOp(ctx, string(owner), op, refStrings(touched))
	s.publish(ctx, op, owner, touched)
	return nil
}

// view runs a read-only body after validating owner.
func (s *LedgerService) view(ctx context.Context, owner core.Owner, fn func(ctx context.Context, tx storage.Tx) error) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	return translate(s.store.View(ctx, fn))
}

// publish is best-effort: the use case has already committed.
func (s *LedgerService) publish(ctx context.Context, op string, owner core.Owner, touched []core.EntityRef) {
	e := core.Event{
		ID:         uuid.NewString(),
		Owner:      owner,
		Operation:  op,
		Entities:   touched,
		OccurredAt: s.now(),
	}
	if err := s.events.PublishEvent(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			log.FieldEventID, e.ID, log.FieldOperation, op, log.FieldError, err)
	}
}

// translate maps infrastructure failures onto the caller-facing taxonomy.
func translate(err error) error {
	switch {
	case err == nil || core.IsBusiness(err):
		return err
	case errors.Is(err, lock.ErrNotAcquired):
		return core.Conflict("resource is busy, retry the operation")
	case errors.Is(err, storage.ErrConflict), errors.Is(err, storage.ErrNotFound):
		return core.Conflict("concurrent modification detected, retry the operation")
	default:
		return fmt.Errorf("ledger: %w", err)
	}
}

func refStrings(refs []core.EntityRef) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.String()
	}
	return out
}

// Ping reports whether the store is reachable.
func (s *LedgerService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close releases the store and any publisher that holds resources.
func (s *LedgerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if c, ok := s.events.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
	}

	return errors.Join(errs...)
}

func opt(kind core.Kind, id *int64) core.EntityRef {
	if id == nil {
		return core.EntityRef{Kind: kind}
	}
	return core.Ref(kind, *id)
}
