package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/storage"
)

const (
	accountCols    = "id, owner, name, type, balance::text"
	budgetCols     = "id, owner, name, amount::text"
	debtCols       = "id, owner, person, amount::text, given"
	creditCols     = "id, owner, source, amount::text, note, account_id"
	investmentCols = "id, owner, name, type, value::text, account_id, budget_id"
)

func parseNumeric(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse numeric %q: %w", s, err)
	}
	return d, nil
}

type accounts struct{ t pgTx }

func scanAccount(row pgx.Row) (core.Account, error) {
	var (
		a              core.Account
		owner, balance string
	)
	if err := row.Scan(&a.ID, &owner, &a.Name, &a.Type, &balance); err != nil {
		return a, err
	}
	a.Owner = core.Owner(owner)
	var err error
	a.Balance, err = parseNumeric(balance)
	return a, err
}

func (r accounts) FindByID(ctx context.Context, id int64) (core.Account, error) {
	a, err := queryOne(ctx, r.t.q, scanAccount, "SELECT "+accountCols+" FROM accounts WHERE id = $1"+r.t.forUpdate(), id)
	if err != nil {
		return a, fmt.Errorf("find account %d: %w", id, err)
	}
	return a, nil
}

func (r accounts) FindByOwner(ctx context.Context, owner core.Owner) ([]core.Account, error) {
	out, err := queryMany(ctx, r.t.q, scanAccount, "SELECT "+accountCols+" FROM accounts WHERE owner = $1 ORDER BY id", string(owner))
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return out, nil
}

func (r accounts) Save(ctx context.Context, a core.Account) (core.Account, error) {
	if a.ID == 0 {
		err := r.t.q.QueryRow(ctx,
			"INSERT INTO accounts (owner, name, type, balance) VALUES ($1, $2, $3, $4::numeric) RETURNING id",
			string(a.Owner), a.Name, a.Type, a.Balance.String()).Scan(&a.ID)
		if err != nil {
			return a, fmt.Errorf("insert account: %w", classify(err))
		}
		return a, nil
	}
	err := execOne(ctx, r.t.q, "UPDATE accounts SET name = $1, type = $2, balance = $3::numeric WHERE id = $4",
		a.Name, a.Type, a.Balance.String(), a.ID)
	if err != nil {
		return a, fmt.Errorf("update account %d: %w", a.ID, classify(err))
	}
	return a, nil
}

func (r accounts) Delete(ctx context.Context, id int64) error {
	if err := execOne(ctx, r.t.q, "DELETE FROM accounts WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete account %d: %w", id, classify(err))
	}
	return nil
}

type budgets struct{ t pgTx }

func scanBudget(row pgx.Row) (core.Budget, error) {
	var (
		b             core.Budget
		owner, amount string
	)
	if err := row.Scan(&b.ID, &owner, &b.Name, &amount); err != nil {
		return b, err
	}
	b.Owner = core.Owner(owner)
	var err error
	b.Amount, err = parseNumeric(amount)
	return b, err
}

func (r budgets) FindByID(ctx context.Context, id int64) (core.Budget, error) {
	b, err := queryOne(ctx, r.t.q, scanBudget, "SELECT "+budgetCols+" FROM budgets WHERE id = $1"+r.t.forUpdate(), id)
	if err != nil {
		return b, fmt.Errorf("find budget %d: %w", id, err)
	}
	return b, nil
}

func (r budgets) FindByOwner(ctx context.Context, owner core.Owner) ([]core.Budget, error) {
	out, err := queryMany(ctx, r.t.q, scanBudget, "SELECT "+budgetCols+" FROM budgets WHERE owner = $1 ORDER BY id", string(owner))
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return out, nil
}

func (r budgets) Save(ctx context.Context, b core.Budget) (core.Budget, error) {
	if b.ID == 0 {
		err := r.t.q.QueryRow(ctx,
			"INSERT INTO budgets (owner, name, amount) VALUES ($1, $2, $3::numeric) RETURNING id",
			string(b.Owner), b.Name, b.Amount.String()).Scan(&b.ID)
		if err != nil {
			return b, fmt.Errorf("insert budget: %w", classify(err))
		}
		return b, nil
	}
	err := execOne(ctx, r.t.q, "UPDATE budgets SET name = $1, amount = $2::numeric WHERE id = $3", b.Name, b.Amount.String(), b.ID)
	if err != nil {
		return b, fmt.Errorf("update budget %d: %w", b.ID, classify(err))
	}
	return b, nil
}

func (r budgets) Delete(ctx context.Context, id int64) error {
	if err := execOne(ctx, r.t.q, "DELETE FROM budgets WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete budget %d: %w", id, classify(err))
	}
	return nil
}

type debts struct{ t pgTx }

func scanDebt(row pgx.Row) (core.Debt, error) {
	var (
		d             core.Debt
		owner, amount string
	)
	if err := row.Scan(&d.ID, &owner, &d.Counterparty, &amount, &d.Given); err != nil {
		return d, err
	}
	d.Owner = core.Owner(owner)
	var err error
	d.Amount, err = parseNumeric(amount)
	return d, err
}

func (r debts) FindByID(ctx context.Context, id int64) (core.Debt, error) {
	d, err := queryOne(ctx, r.t.q, scanDebt, "SELECT "+debtCols+" FROM debts WHERE id = $1"+r.t.forUpdate(), id)
	if err != nil {
		return d, fmt.Errorf("find debt %d: %w", id, err)
	}
	return d, nil
}

func (r debts) FindByOwner(ctx context.Context, owner core.Owner) ([]core.Debt, error) {
	out, err := queryMany(ctx, r.t.q, scanDebt, "SELECT "+debtCols+" FROM debts WHERE owner = $1 ORDER BY id", string(owner))
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	return out, nil
}

func (r debts) FindByCounterparty(ctx context.Context, owner core.Owner, name string) (core.Debt, error) {
	d, err := queryOne(ctx, r.t.q, scanDebt,
		"SELECT "+debtCols+" FROM debts WHERE owner = $1 AND person = $2 ORDER BY id LIMIT 1"+r.t.forUpdate(), string(owner), name)
	if err != nil {
		return d, fmt.Errorf("find debt for %q: %w", name, err)
	}
	return d, nil
}

func (r debts) Save(ctx context.Context, d core.Debt) (core.Debt, error) {
	if d.ID == 0 {
		err := r.t.q.QueryRow(ctx,
			"INSERT INTO debts (owner, person, amount, given) VALUES ($1, $2, $3::numeric, $4) RETURNING id",
			string(d.Owner), d.Counterparty, d.Amount.String(), d.Given).Scan(&d.ID)
		if err != nil {
			return d, fmt.Errorf("insert debt: %w", classify(err))
		}
		return d, nil
	}
	err := execOne(ctx, r.t.q, "UPDATE debts SET person = $1, amount = $2::numeric, given = $3 WHERE id = $4",
		d.Counterparty, d.Amount.String(), d.Given, d.ID)
	if err != nil {
		return d, fmt.Errorf("update debt %d: %w", d.ID, classify(err))
	}
	return d, nil
}

func (r debts) Delete(ctx context.Context, id int64) error {
	if err := execOne(ctx, r.t.q, "DELETE FROM debts WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete debt %d: %w", id, classify(err))
	}
	return nil
}

type credits struct{ t pgTx }

func scanCredit(row pgx.Row) (core.Credit, error) {
	var (
		c             core.Credit
		owner, amount string
	)
	if err := row.Scan(&c.ID, &owner, &c.Source, &amount, &c.Note, &c.AccountID); err != nil {
		return c, err
	}
	c.Owner = core.Owner(owner)
	var err error
	c.Amount, err = parseNumeric(amount)
	return c, err
}

func (r credits) FindByID(ctx context.Context, id int64) (core.Credit, error) {
	c, err := queryOne(ctx, r.t.q, scanCredit, "SELECT "+creditCols+" FROM credits WHERE id = $1"+r.t.forUpdate(), id)
	if err != nil {
		return c, fmt.Errorf("find credit %d: %w", id, err)
	}
	return c, nil
}

func (r credits) FindByOwner(ctx context.Context, owner core.Owner) ([]core.Credit, error) {
	out, err := queryMany(ctx, r.t.q, scanCredit, "SELECT "+creditCols+" FROM credits WHERE owner = $1 ORDER BY id", string(owner))
	if err != nil {
		return nil, fmt.Errorf("list credits: %w", err)
	}
	return out, nil
}

func (r credits) Save(ctx context.Context, c core.Credit) (core.Credit, error) {
	if c.ID == 0 {
		err := r.t.q.QueryRow(ctx,
			"INSERT INTO credits (owner, source, amount, note, account_id) VALUES ($1, $2, $3::numeric, $4, $5) RETURNING id",
			string(c.Owner), c.Source, c.Amount.String(), c.Note, c.AccountID).Scan(&c.ID)
		if err != nil {
			return c, fmt.Errorf("insert credit: %w", classify(err))
		}
		return c, nil
	}
	err := execOne(ctx, r.t.q, "UPDATE credits SET source = $1, amount = $2::numeric, note = $3, account_id = $4 WHERE id = $5",
		c.Source, c.Amount.String(), c.Note, c.AccountID, c.ID)
	if err != nil {
		return c, fmt.Errorf("update credit %d: %w", c.ID, classify(err))
	}
	return c, nil
}

func (r credits) Delete(ctx context.Context, id int64) error {
	if err := execOne(ctx, r.t.q, "DELETE FROM credits WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete credit %d: %w", id, classify(err))
	}
	return nil
}

func (r credits) DeleteByAccount(ctx context.Context, accountID int64) error {
	if _, err := r.t.q.Exec(ctx, "DELETE FROM credits WHERE account_id = $1", accountID); err != nil {
		return fmt.Errorf("delete credits of account %d: %w", accountID, classify(err))
	}
	return nil
}

type investments struct{ t pgTx }

func scanInvestment(row pgx.Row) (core.Investment, error) {
	var (
		inv          core.Investment
		owner, value string
	)
	if err := row.Scan(&inv.ID, &owner, &inv.Name, &inv.Type, &value, &inv.AccountID, &inv.BudgetID); err != nil {
		return inv, err
	}
	inv.Owner = core.Owner(owner)
	var err error
	inv.Value, err = parseNumeric(value)
	return inv, err
}

func (r investments) FindByID(ctx context.Context, id int64) (core.Investment, error) {
	inv, err := queryOne(ctx, r.t.q, scanInvestment, "SELECT "+investmentCols+" FROM investments WHERE id = $1"+r.t.forUpdate(), id)
	if err != nil {
		return inv, fmt.Errorf("find investment %d: %w", id, err)
	}
	return inv, nil
}

func (r investments) FindByOwner(ctx context.Context, owner core.Owner) ([]core.Investment, error) {
	out, err := queryMany(ctx, r.t.q, scanInvestment, "SELECT "+investmentCols+" FROM investments WHERE owner = $1 ORDER BY id", string(owner))
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	return out, nil
}

func (r investments) Save(ctx context.Context, inv core.Investment) (core.Investment, error) {
	if inv.ID == 0 {
		err := r.t.q.QueryRow(ctx,
			"INSERT INTO investments (owner, name, type, value, account_id, budget_id) VALUES ($1, $2, $3, $4::numeric, $5, $6) RETURNING id",
			string(inv.Owner), inv.Name, inv.Type, inv.Value.String(), inv.AccountID, inv.BudgetID).Scan(&inv.ID)
		if err != nil {
			return inv, fmt.Errorf("insert investment: %w", classify(err))
		}
		return inv, nil
	}
	err := execOne(ctx, r.t.q,
		"UPDATE investments SET name = $1, type = $2, value = $3::numeric, account_id = $4, budget_id = $5 WHERE id = $6",
		inv.Name, inv.Type, inv.Value.String(), inv.AccountID, inv.BudgetID, inv.ID)
	if err != nil {
		return inv, fmt.Errorf("update investment %d: %w", inv.ID, classify(err))
	}
	return inv, nil
}

func (r investments) Delete(ctx context.Context, id int64) error {
	if err := execOne(ctx, r.t.q, "DELETE FROM investments WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete investment %d: %w", id, classify(err))
	}
	return nil
}

func (r investments) UnlinkAccount(ctx context.Context, accountID int64) error {
	if _, err := r.t.q.Exec(ctx, "UPDATE investments SET account_id = NULL WHERE account_id = $1", accountID); err != nil {
		return fmt.Errorf("unlink account %d: %w", accountID, err)
	}
	return nil
}

func (r investments) UnlinkBudget(ctx context.Context, budgetID int64) error {
	if _, err := r.t.q.Exec(ctx, "UPDATE investments SET budget_id = NULL WHERE budget_id = $1", budgetID); err != nil {
		return fmt.Errorf("unlink budget %d: %w", budgetID, err)
	}
	return nil
}

var (
	_ storage.Accounts    = accounts{}
	_ storage.Budgets     = budgets{}
	_ storage.Debts       = debts{}
	_ storage.Credits     = credits{}
	_ storage.Investments = investments{}
)
