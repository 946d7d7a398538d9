package storage

import (
	"context"
	"errors"

	"ledger/internal/core"
)

var (
	ErrNotFound = errors.New("storage: not found")
	ErrConflict = errors.New("storage: conflict")
)

// Ports for persistence adapters.
type (
	// Repository is the minimal per-entity contract. Save inserts when the
	// entity ID is zero and returns the stored value with its assigned ID.
	Repository[T core.Entity] interface {
		FindByID(ctx context.Context, id int64) (T, error)
		FindByOwner(ctx context.Context, owner core.Owner) ([]T, error)
		Save(ctx context.Context, v T) (T, error)
		Delete(ctx context.Context, id int64) error
	}

	Accounts interface {
		Repository[core.Account]
	}

	Budgets interface {
		Repository[core.Budget]
	}

	Debts interface {
		Repository[core.Debt]
		// FindByCounterparty returns the lowest-id debt of owner with that counterparty.
		FindByCounterparty(ctx context.Context, owner core.Owner, name string) (core.Debt, error)
	}

	Credits interface {
		Repository[core.Credit]
		DeleteByAccount(ctx context.Context, accountID int64) error
	}

	Investments interface {
		Repository[core.Investment]
		UnlinkAccount(ctx context.Context, accountID int64) error
		UnlinkBudget(ctx context.Context, budgetID int64) error
	}

	// Tx groups the repositories bound to one unit of work.
	Tx interface {
		Accounts() Accounts
		Budgets() Budgets
		Debts() Debts
		Credits() Credits
		Investments() Investments
	}

	Store interface {
		// WithinTx runs fn in a single atomic unit of work. Any error returned
		// by fn rolls back every write made through tx.
		WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
		// View runs fn against committed state without taking write locks.
		View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
		Ping(ctx context.Context) error
		Close() error
	}
)
