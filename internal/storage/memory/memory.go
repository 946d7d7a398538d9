// Package memory is an in-process Store used by tests and DATA_BACKEND=memory.
package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"ledger/internal/core"
	"ledger/internal/storage"
)

type table[T core.Entity] struct {
	rows   map[int64]T
	nextID int64
	id     func(T) int64
	withID func(T, int64) T
}

func newTable[T core.Entity](id func(T) int64, withID func(T, int64) T) *table[T] {
	return &table[T]{rows: map[int64]T{}, id: id, withID: withID}
}

func (t *table[T]) FindByID(_ context.Context, id int64) (T, error) {
	v, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, storage.ErrNotFound
	}
	return v, nil
}

func (t *table[T]) FindByOwner(_ context.Context, owner core.Owner) ([]T, error) {
	out := make([]T, 0)
	for _, v := range t.rows {
		if v.OwnedBy() == owner {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(t.id(a), t.id(b)) })
	return out, nil
}

func (t *table[T]) Save(_ context.Context, v T) (T, error) {
	id := t.id(v)
	if id == 0 {
		t.nextID++
		v = t.withID(v, t.nextID)
	} else if _, ok := t.rows[id]; !ok {
		var zero T
		return zero, storage.ErrNotFound
	}
	t.rows[t.id(v)] = v
	return v, nil
}

func (t *table[T]) Delete(_ context.Context, id int64) error {
	if _, ok := t.rows[id]; !ok {
		return storage.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

func (t *table[T]) snapshot() func() {
	rows, next := maps.Clone(t.rows), t.nextID
	return func() { t.rows, t.nextID = rows, next }
}

type debts struct{ *table[core.Debt] }

func (d debts) FindByCounterparty(ctx context.Context, owner core.Owner, name string) (core.Debt, error) {
	all, _ := d.FindByOwner(ctx, owner)
	for _, v := range all {
		if v.Counterparty == name {
			return v, nil
		}
	}
	return core.Debt{}, storage.ErrNotFound
}

type credits struct{ *table[core.Credit] }

func (c credits) DeleteByAccount(_ context.Context, accountID int64) error {
	for id, v := range c.rows {
		if v.AccountID == accountID {
			delete(c.rows, id)
		}
	}
	return nil
}

type investments struct{ *table[core.Investment] }

func (i investments) UnlinkAccount(_ context.Context, accountID int64) error {
	for id, v := range i.rows {
		if v.IsLinkedTo(accountID) {
			v.AccountID = nil
			i.rows[id] = v
		}
	}
	return nil
}

func (i investments) UnlinkBudget(_ context.Context, budgetID int64) error {
	for id, v := range i.rows {
		if v.BudgetID != nil && *v.BudgetID == budgetID {
			v.BudgetID = nil
			i.rows[id] = v
		}
	}
	return nil
}

// Store keeps every table behind one mutex. A unit of work holds the mutex
// for its whole duration and restores a snapshot when it fails.
type Store struct {
	mu          sync.RWMutex
	accounts    *table[core.Account]
	budgets     *table[core.Budget]
	debts       *table[core.Debt]
	credits     *table[core.Credit]
	investments *table[core.Investment]
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		accounts: newTable(
			func(v core.Account) int64 { return v.ID },
			func(v core.Account, id int64) core.Account { v.ID = id; return v }),
		budgets: newTable(
			func(v core.Budget) int64 { return v.ID },
			func(v core.Budget, id int64) core.Budget { v.ID = id; return v }),
		debts: newTable(
			func(v core.Debt) int64 { return v.ID },
			func(v core.Debt, id int64) core.Debt { v.ID = id; return v }),
		credits: newTable(
			func(v core.Credit) int64 { return v.ID },
			func(v core.Credit, id int64) core.Credit { v.ID = id; return v }),
		investments: newTable(
			func(v core.Investment) int64 { return v.ID },
			func(v core.Investment, id int64) core.Investment { v.ID = id; return v }),
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(context.Context, storage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	restore := []func(){
		s.accounts.snapshot(),
		s.budgets.snapshot(),
		s.debts.snapshot(),
		s.credits.snapshot(),
		s.investments.snapshot(),
	}
	if err := fn(ctx, memTx{s}); err != nil {
		for _, r := range restore {
			r()
		}
		return err
	}
	return nil
}

func (s *Store) View(ctx context.Context, fn func(context.Context, storage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(ctx, memTx{s})
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

type memTx struct{ s *Store }

func (t memTx) Accounts() storage.Accounts       { return t.s.accounts }
func (t memTx) Budgets() storage.Budgets         { return t.s.budgets }
func (t memTx) Debts() storage.Debts             { return debts{t.s.debts} }
func (t memTx) Credits() storage.Credits         { return credits{t.s.credits} }
func (t memTx) Investments() storage.Investments { return investments{t.s.investments} }
