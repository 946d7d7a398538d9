package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
	"ledger/internal/storage"
)

func TestSaveAssignsIDsAndFinds(t *testing.T) {
	ctx := context.Background()
	s := New()

	var first, second core.Account
	err := s.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		first, err = tx.Accounts().Save(ctx, core.Account{Owner: "u1", Name: "a", Balance: decimal.NewFromInt(5)})
		if err != nil {
			return err
		}
		second, err = tx.Accounts().Save(ctx, core.Account{Owner: "u2", Name: "b"})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	err = s.View(ctx, func(ctx context.Context, tx storage.Tx) error {
		got, err := tx.Accounts().FindByID(ctx, 1)
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(decimal.NewFromInt(5)))

		mine, err := tx.Accounts().FindByOwner(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, mine, 1)

		_, err = tx.Accounts().FindByID(ctx, 99)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestSaveUnknownIDFails(t *testing.T) {
	s := New()
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		_, err := tx.Budgets().Save(ctx, core.Budget{ID: 42, Owner: "u1", Name: "x"})
		return err
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFailedUnitOfWorkRollsBack(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		_, err := tx.Accounts().Save(ctx, core.Account{Owner: "u1", Name: "a", Balance: decimal.NewFromInt(10)})
		return err
	}))

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		a, _ := tx.Accounts().FindByID(ctx, 1)
		a.Balance = decimal.NewFromInt(999)
		if _, err := tx.Accounts().Save(ctx, a); err != nil {
			return err
		}
		if _, err := tx.Debts().Save(ctx, core.Debt{Owner: "u1", Counterparty: "Bob"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, s.View(ctx, func(ctx context.Context, tx storage.Tx) error {
		a, err := tx.Accounts().FindByID(ctx, 1)
		require.NoError(t, err)
		assert.True(t, a.Balance.Equal(decimal.NewFromInt(10)))
		debts, _ := tx.Debts().FindByOwner(ctx, "u1")
		assert.Empty(t, debts)
		return nil
	}))

	// ID sequence is restored too
	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		d, err := tx.Debts().Save(ctx, core.Debt{Owner: "u1", Counterparty: "Bob"})
		assert.Equal(t, int64(1), d.ID)
		return err
	}))
}

func TestFindByCounterpartyPicksLowestID(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		for _, d := range []core.Debt{
			{Owner: "u2", Counterparty: "Bob"},
			{Owner: "u1", Counterparty: "Alice"},
			{Owner: "u1", Counterparty: "Bob"},
			{Owner: "u1", Counterparty: "Bob"},
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
		assert.Equal(t, int64(3), d.ID)

		_, err = tx.Debts().FindByCounterparty(ctx, "u1", "Carol")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		return nil
	}))
}

func TestUnlinkAndCascade(t *testing.T) {
	ctx := context.Background()
	s := New()
	acctID, budgetID := int64(1), int64(1)
	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		_, _ = tx.Credits().Save(ctx, core.Credit{Owner: "u1", Source: "s", AccountID: 1})
		_, _ = tx.Credits().Save(ctx, core.Credit{Owner: "u1", Source: "s", AccountID: 2})
		_, err := tx.Investments().Save(ctx, core.Investment{Owner: "u1", Name: "i", AccountID: &acctID, BudgetID: &budgetID})
		return err
	}))

	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		require.NoError(t, tx.Credits().DeleteByAccount(ctx, 1))
		require.NoError(t, tx.Investments().UnlinkAccount(ctx, 1))
		return tx.Investments().UnlinkBudget(ctx, 1)
	}))

	require.NoError(t, s.View(ctx, func(ctx context.Context, tx storage.Tx) error {
		cs, _ := tx.Credits().FindByOwner(ctx, "u1")
		require.Len(t, cs, 1)
		assert.Equal(t, int64(2), cs[0].AccountID)

		inv, err := tx.Investments().FindByID(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, inv.AccountID)
		assert.Nil(t, inv.BudgetID)
		return nil
	}))
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New().WithinTx(ctx, func(context.Context, storage.Tx) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
