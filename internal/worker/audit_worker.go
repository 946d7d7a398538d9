package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"ledger/internal/amqp"
	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

// AuditWorker turns ledger change events into audit log lines carrying the
// current state of every touched entity.
type AuditWorker struct {
	store  storage.Store
	seen   cache.Cache[struct{}]
	logger *log.Logger
}

// NewAuditWorker builds a worker. seen remembers handled event ids so a
// redelivered message is logged once; store may be nil, in which case only
// the event references are logged.
func NewAuditWorker(store storage.Store, seen cache.Cache[struct{}], logger *log.Logger) *AuditWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &AuditWorker{store: store, seen: seen, logger: logger}
}

// HandleEvent processes a single ledger event from AMQP.
func (w *AuditWorker) HandleEvent(ctx context.Context, msg *amqp.EventMessage) error {
	if w.seen != nil {
		if _, dup := w.seen.Get(msg.ID); dup {
			w.logger.DebugContext(ctx, "Skipping redelivered event", log.FieldEventID, msg.ID)
			return nil
		}
	}

	event := msg.Event()
	entities := make([]string, len(event.Entities))
	for i, ref := range event.Entities {
		entities[i] = ref.String()
	}
	fields := log.NewFields().WithLedgerOp(string(event.Owner), event.Operation, entities)
	w.logger.InfoContext(ctx, "Ledger operation committed",
		append(fields.ToSlice(), log.FieldEventID, msg.ID, "occurred_at", msg.OccurredAt)...)

	if w.store != nil {
		err := w.store.View(ctx, func(ctx context.Context, tx storage.Tx) error {
			for _, ref := range event.Entities {
				state, err := snapshot(ctx, tx, ref)
				if errors.Is(err, storage.ErrNotFound) {
					w.logger.InfoContext(ctx, "Entity removed", log.FieldEventID, msg.ID, "entity", ref.String())
					continue
				}
				if err != nil {
					return fmt.Errorf("load %s: %w", ref, err)
				}
				if state.owner != event.Owner {
					w.logger.WarnContext(ctx, "Entity owner does not match event owner",
						log.FieldEventID, msg.ID, "entity", ref.String())
					continue
				}
				w.logger.InfoContext(ctx, "Entity state",
					append([]any{log.FieldEventID, msg.ID, "entity", ref.String()}, state.attrs...)...)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	if w.seen != nil {
		w.seen.Set(msg.ID, struct{}{})
	}
	return nil
}

type entityState struct {
	owner core.Owner
	attrs []any
}

func snapshot(ctx context.Context, tx storage.Tx, ref core.EntityRef) (entityState, error) {
	switch ref.Kind {
	case core.KindAccount:
		a, err := tx.Accounts().FindByID(ctx, ref.ID)
		if err != nil {
			return entityState{}, err
		}
		return entityState{a.Owner, []any{"name", a.Name, "balance", a.Balance.String()}}, nil
	case core.KindBudget:
		b, err := tx.Budgets().FindByID(ctx, ref.ID)
		if err != nil {
			return entityState{}, err
		}
		return entityState{b.Owner, []any{"name", b.Name, "amount", b.Amount.String()}}, nil
	case core.KindDebt:
		d, err := tx.Debts().FindByID(ctx, ref.ID)
		if err != nil {
			return entityState{}, err
		}
		return entityState{d.Owner, []any{"person", d.Counterparty, "amount", d.Amount.String(), "given", d.Given}}, nil
	case core.KindCredit:
		c, err := tx.Credits().FindByID(ctx, ref.ID)
		if err != nil {
			return entityState{}, err
		}
		return entityState{c.Owner, []any{"source", c.Source, "amount", c.Amount.String(), "account_id", c.AccountID}}, nil
	case core.KindInvestment:
		inv, err := tx.Investments().FindByID(ctx, ref.ID)
		if err != nil {
			return entityState{}, err
		}
		return entityState{inv.Owner, []any{"name", inv.Name, "value", inv.Value.String(), "account_id", optionalID(inv.AccountID), "budget_id", optionalID(inv.BudgetID)}}, nil
	default:
		return entityState{}, fmt.Errorf("unknown entity kind %q", ref.Kind)
	}
}

func optionalID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}
