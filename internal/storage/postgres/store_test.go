package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
	"ledger/internal/storage"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		conflict bool
	}{
		{"deadlock", &pgconn.PgError{Code: "40P01", Message: "deadlock detected"}, true},
		{"serialization", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "40001"}), true},
		{"foreign key", &pgconn.PgError{Code: "23503"}, true},
		{"syntax", &pgconn.PgError{Code: "42601"}, false},
		{"plain", errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(tc.err)
			assert.Equal(t, tc.conflict, errors.Is(got, storage.ErrConflict))
		})
	}
	assert.NoError(t, classify(nil))
}

// recordingQuerier keeps every statement it is handed and finds no rows.
type recordingQuerier struct {
	sql []string
}

func (q *recordingQuerier) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	q.sql = append(q.sql, sql)
	return pgconn.CommandTag{}, nil
}

func (q *recordingQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	q.sql = append(q.sql, sql)
	return nil, errors.New("not supported")
}

func (q *recordingQuerier) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	q.sql = append(q.sql, sql)
	return noRow{}
}

type noRow struct{}

func (noRow) Scan(...any) error { return pgx.ErrNoRows }

func TestForUpdateOnlyInsideUnitOfWork(t *testing.T) {
	assert.Equal(t, " FOR UPDATE", pgTx{lock: true}.forUpdate())
	assert.Equal(t, "", pgTx{}.forUpdate())

	for _, lock := range []bool{true, false} {
		q := &recordingQuerier{}
		tx := pgTx{q: q, lock: lock}
		ctx := context.Background()

		_, _ = tx.Accounts().FindByID(ctx, 1)
		_, _ = tx.Budgets().FindByID(ctx, 1)
		_, _ = tx.Debts().FindByID(ctx, 1)
		_, _ = tx.Debts().FindByCounterparty(ctx, "alice", "Bob")
		_, _ = tx.Credits().FindByID(ctx, 1)
		_, _ = tx.Investments().FindByID(ctx, 1)

		require.Len(t, q.sql, 6)
		for _, sql := range q.sql {
			assert.Equal(t, lock, strings.HasSuffix(sql, " FOR UPDATE"), "lock=%v: %s", lock, sql)
		}
	}
}

func TestParseNumeric(t *testing.T) {
	d, err := parseNumeric("123456789012345678901234.000001")
	require.NoError(t, err)
	assert.Equal(t, "123456789012345678901234.000001", d.String())

	_, err = parseNumeric("NaN")
	assert.Error(t, err)
}

// Runs only when LEDGER_TEST_DATABASE_URL points at a disposable database.
func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("LEDGER_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("LEDGER_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	owner := core.Owner(fmt.Sprintf("it-%d", os.Getpid()))
	var acct core.Account
	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		acct, err = tx.Accounts().Save(ctx, core.Account{Owner: owner, Name: "main", Balance: decimal.RequireFromString("10.005")})
		return err
	}))

	boom := errors.New("boom")
	err = s.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		a, err := tx.Accounts().FindByID(ctx, acct.ID)
		if err != nil {
			return err
		}
		a.Balance = decimal.Zero
		if _, err := tx.Accounts().Save(ctx, a); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, s.View(ctx, func(ctx context.Context, tx storage.Tx) error {
		a, err := tx.Accounts().FindByID(ctx, acct.ID)
		require.NoError(t, err)
		assert.Equal(t, "10.005", a.Balance.String())
		return nil
	}))

	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.Accounts().Delete(ctx, acct.ID)
	}))
}
