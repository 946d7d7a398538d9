package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
	"ledger/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAccountRoundTripKeepsPrecision(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	balance := decimal.RequireFromString("12345678901234567890.123456789")
	var saved core.Account
	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		saved, err = tx.Accounts().Save(ctx, core.Account{Owner: "u1", Name: "Main", Type: "bank", Balance: balance})
		return err
	}))
	require.NotZero(t, saved.ID)

	require.NoError(t, s.View(ctx, func(ctx context.Context, tx storage.Tx) error {
		got, err := tx.Accounts().FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(balance), "got %s", got.Balance)
		assert.Equal(t, core.Owner("u1"), got.Owner)
		assert.Equal(t, "bank", got.Type)
		return nil
	}))
}

func TestRollbackOnError(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		if _, err := tx.Budgets().Save(ctx, core.Budget{Owner: "u1", Name: "Food", Amount: decimal.NewFromInt(10)}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, s.View(ctx, func(ctx context.Context, tx storage.Tx) error {
		bs, err := tx.Budgets().FindByOwner(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, bs)
		return nil
	}))
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	err := s.View(ctx, func(ctx context.Context, tx storage.Tx) error {
		_, err := tx.Debts().FindByID(ctx, 7)
		return err
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = s.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.Investments().Delete(ctx, 7)
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = s.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		_, err := tx.Accounts().Save(ctx, core.Account{ID: 7, Owner: "u1", Name: "x"})
		return err
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDebtsAndCounterparty(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		for _, d := range []core.Debt{
			{Owner: "u1", Counterparty: "Bob", Amount: decimal.NewFromInt(5), Given: true},
			{Owner: "u1", Counterparty: "Bob", Amount: decimal.NewFromInt(9)},
			{Owner: "u2", Counterparty: "Bob", Amount: decimal.NewFromInt(1)},
		} {
			if _, err := tx.Debts().Save(ctx, d); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, s.View(ctx, func(ctx context.Context, tx storage.Tx) error {
		d, err := tx.Debts().FindByCounterparty(ctx, "u1", "Bob")
		require.NoError(t, err)
		assert.Equal(t, int64(1), d.ID)
		assert.True(t, d.Given)

		_, err = tx.Debts().FindByCounterparty(ctx, "u1", "Carol")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		return nil
	}))
}

func TestInvestmentLinksAndAccountCascade(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	var acct core.Account
	var budget core.Budget
	var inv core.Investment
	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		if acct, err = tx.Accounts().Save(ctx, core.Account{Owner: "u1", Name: "a"}); err != nil {
			return err
		}
		if budget, err = tx.Budgets().Save(ctx, core.Budget{Owner: "u1", Name: "b"}); err != nil {
			return err
		}
		if _, err = tx.Credits().Save(ctx, core.Credit{Owner: "u1", Source: "s", Amount: decimal.NewFromInt(1), AccountID: acct.ID}); err != nil {
			return err
		}
		inv, err = tx.Investments().Save(ctx, core.Investment{
			Owner: "u1", Name: "ETF", Type: "fund", Value: decimal.NewFromInt(3),
			AccountID: &acct.ID, BudgetID: &budget.ID,
		})
		return err
	}))

	// Foreign keys reject deleting an account that still has credits.
	err := s.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.Accounts().Delete(ctx, acct.ID)
	})
	require.ErrorIs(t, err, storage.ErrConflict)

	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		if err := tx.Credits().DeleteByAccount(ctx, acct.ID); err != nil {
			return err
		}
		if err := tx.Investments().UnlinkAccount(ctx, acct.ID); err != nil {
			return err
		}
		if err := tx.Investments().UnlinkBudget(ctx, budget.ID); err != nil {
			return err
		}
		if err := tx.Budgets().Delete(ctx, budget.ID); err != nil {
			return err
		}
		return tx.Accounts().Delete(ctx, acct.ID)
	}))

	require.NoError(t, s.View(ctx, func(ctx context.Context, tx storage.Tx) error {
		got, err := tx.Investments().FindByID(ctx, inv.ID)
		require.NoError(t, err)
		assert.Nil(t, got.AccountID)
		assert.Nil(t, got.BudgetID)
		return nil
	}))
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		_, err := tx.Accounts().Save(ctx, core.Account{Owner: "u1", Name: "a", Balance: decimal.RequireFromString("0.10")})
		return err
	}))
	require.NoError(t, s.Close())

	s, err = Open(path) // migrations are idempotent
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.View(ctx, func(ctx context.Context, tx storage.Tx) error {
		all, err := tx.Accounts().FindByOwner(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "0.1", all[0].Balance.String())
		return nil
	}))
}
