package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"ledger/internal/core"
	"ledger/internal/storage"
)

const (
	accountCols    = "id, owner, name, type, balance"
	budgetCols     = "id, owner, name, amount"
	debtCols       = "id, owner, person, amount, given"
	creditCols     = "id, owner, source, amount, note, account_id"
	investmentCols = "id, owner, name, type, value, account_id, budget_id"
)

type accounts struct{ q querier }

func scanAccount(s scanner) (core.Account, error) {
	var a core.Account
	err := s.Scan(&a.ID, &a.Owner, &a.Name, &a.Type, &a.Balance)
	return a, err
}

func (r accounts) FindByID(ctx context.Context, id int64) (core.Account, error) {
	a, err := queryOne(ctx, r.q, scanAccount, "SELECT "+accountCols+" FROM accounts WHERE id = ?", id)
	if err != nil {
		return a, fmt.Errorf("find account %d: %w", id, err)
	}
	return a, nil
}

func (r accounts) FindByOwner(ctx context.Context, owner core.Owner) ([]core.Account, error) {
	out, err := queryMany(ctx, r.q, scanAccount, "SELECT "+accountCols+" FROM accounts WHERE owner = ? ORDER BY id", owner)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return out, nil
}

func (r accounts) Save(ctx context.Context, a core.Account) (core.Account, error) {
	if a.ID == 0 {
		id, err := insert(ctx, r.q, "INSERT INTO accounts (owner, name, type, balance) VALUES (?, ?, ?, ?)",
			a.Owner, a.Name, a.Type, a.Balance.String())
		if err != nil {
			return a, fmt.Errorf("insert account: %w", classify(err))
		}
		a.ID = id
		return a, nil
	}
	err := execOne(ctx, r.q, "UPDATE accounts SET name = ?, type = ?, balance = ? WHERE id = ?",
		a.Name, a.Type, a.Balance.String(), a.ID)
	if err != nil {
		return a, fmt.Errorf("update account %d: %w", a.ID, classify(err))
	}
	return a, nil
}

func (r accounts) Delete(ctx context.Context, id int64) error {
	if err := execOne(ctx, r.q, "DELETE FROM accounts WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete account %d: %w", id, classify(err))
	}
	return nil
}

type budgets struct{ q querier }

func scanBudget(s scanner) (core.Budget, error) {
	var b core.Budget
	err := s.Scan(&b.ID, &b.Owner, &b.Name, &b.Amount)
	return b, err
}

func (r budgets) FindByID(ctx context.Context, id int64) (core.Budget, error) {
	b, err := queryOne(ctx, r.q, scanBudget, "SELECT "+budgetCols+" FROM budgets WHERE id = ?", id)
	if err != nil {
		return b, fmt.Errorf("find budget %d: %w", id, err)
	}
	return b, nil
}

func (r budgets) FindByOwner(ctx context.Context, owner core.Owner) ([]core.Budget, error) {
	out, err := queryMany(ctx, r.q, scanBudget, "SELECT "+budgetCols+" FROM budgets WHERE owner = ? ORDER BY id", owner)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return out, nil
}

func (r budgets) Save(ctx context.Context, b core.Budget) (core.Budget, error) {
	if b.ID == 0 {
		id, err := insert(ctx, r.q, "INSERT INTO budgets (owner, name, amount) VALUES (?, ?, ?)",
			b.Owner, b.Name, b.Amount.String())
		if err != nil {
			return b, fmt.Errorf("insert budget: %w", classify(err))
		}
		b.ID = id
		return b, nil
	}
	err := execOne(ctx, r.q, "UPDATE budgets SET name = ?, amount = ? WHERE id = ?", b.Name, b.Amount.String(), b.ID)
	if err != nil {
		return b, fmt.Errorf("update budget %d: %w", b.ID, classify(err))
	}
	return b, nil
}

func (r budgets) Delete(ctx context.Context, id int64) error {
	if err := execOne(ctx, r.q, "DELETE FROM budgets WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete budget %d: %w", id, classify(err))
	}
	return nil
}

type debts struct{ q querier }

func scanDebt(s scanner) (core.Debt, error) {
	var d core.Debt
	err := s.Scan(&d.ID, &d.Owner, &d.Counterparty, &d.Amount, &d.Given)
	return d, err
}

func (r debts) FindByID(ctx context.Context, id int64) (core.Debt, error) {
	d, err := queryOne(ctx, r.q, scanDebt, "SELECT "+debtCols+" FROM debts WHERE id = ?", id)
	if err != nil {
		return d, fmt.Errorf("find debt %d: %w", id, err)
	}
	return d, nil
}

func (r debts) FindByOwner(ctx context.Context, owner core.Owner) ([]core.Debt, error) {
	out, err := queryMany(ctx, r.q, scanDebt, "SELECT "+debtCols+" FROM debts WHERE owner = ? ORDER BY id", owner)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	return out, nil
}

func (r debts) FindByCounterparty(ctx context.Context, owner core.Owner, name string) (core.Debt, error) {
	d, err := queryOne(ctx, r.q, scanDebt,
		"SELECT "+debtCols+" FROM debts WHERE owner = ? AND person = ? ORDER BY id LIMIT 1", owner, name)
	if err != nil {
		return d, fmt.Errorf("find debt for %q: %w", name, err)
	}
	return d, nil
}

func (r debts) Save(ctx context.Context, d core.Debt) (core.Debt, error) {
	if d.ID == 0 {
		id, err := insert(ctx, r.q, "INSERT INTO debts (owner, person, amount, given) VALUES (?, ?, ?, ?)",
			d.Owner, d.Counterparty, d.Amount.String(), d.Given)
		if err != nil {
			return d, fmt.Errorf("insert debt: %w", classify(err))
		}
		d.ID = id
		return d, nil
	}
	err := execOne(ctx, r.q, "UPDATE debts SET person = ?, amount = ?, given = ? WHERE id = ?",
		d.Counterparty, d.Amount.String(), d.Given, d.ID)
	if err != nil {
		return d, fmt.Errorf("update debt %d: %w", d.ID, classify(err))
	}
	return d, nil
}

func (r debts) Delete(ctx context.Context, id int64) error {
	if err := execOne(ctx, r.q, "DELETE FROM debts WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete debt %d: %w", id, classify(err))
	}
	return nil
}

type credits struct{ q querier }

func scanCredit(s scanner) (core.Credit, error) {
	var c core.Credit
	err := s.Scan(&c.ID, &c.Owner, &c.Source, &c.Amount, &c.Note, &c.AccountID)
	return c, err
}

func (r credits) FindByID(ctx context.Context, id int64) (core.Credit, error) {
	c, err := queryOne(ctx, r.q, scanCredit, "SELECT "+creditCols+" FROM credits WHERE id = ?", id)
	if err != nil {
		return c, fmt.Errorf("find credit %d: %w", id, err)
	}
	return c, nil
}

func (r credits) FindByOwner(ctx context.Context, owner core.Owner) ([]core.Credit, error) {
	out, err := queryMany(ctx, r.q, scanCredit, "SELECT "+creditCols+" FROM credits WHERE owner = ? ORDER BY id", owner)
	if err != nil {
		return nil, fmt.Errorf("list credits: %w", err)
	}
	return out, nil
}

func (r credits) Save(ctx context.Context, c core.Credit) (core.Credit, error) {
	if c.ID == 0 {
		id, err := insert(ctx, r.q, "INSERT INTO credits (owner, source, amount, note, account_id) VALUES (?, ?, ?, ?, ?)",
			c.Owner, c.Source, c.Amount.String(), c.Note, c.AccountID)
		if err != nil {
			return c, fmt.Errorf("insert credit: %w", classify(err))
		}
		c.ID = id
		return c, nil
	}
	err := execOne(ctx, r.q, "UPDATE credits SET source = ?, amount = ?, note = ?, account_id = ? WHERE id = ?",
		c.Source, c.Amount.String(), c.Note, c.AccountID, c.ID)
	if err != nil {
		return c, fmt.Errorf("update credit %d: %w", c.ID, classify(err))
	}
	return c, nil
}

func (r credits) Delete(ctx context.Context, id int64) error {
	if err := execOne(ctx, r.q, "DELETE FROM credits WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete credit %d: %w", id, classify(err))
	}
	return nil
}

func (r credits) DeleteByAccount(ctx context.Context, accountID int64) error {
	if _, err := r.q.ExecContext(ctx, "DELETE FROM credits WHERE account_id = ?", accountID); err != nil {
		return fmt.Errorf("delete credits of account %d: %w", accountID, classify(err))
	}
	return nil
}

type investments struct{ q querier }

func scanInvestment(s scanner) (core.Investment, error) {
	var (
		inv             core.Investment
		account, budget sql.NullInt64
	)
	if err := s.Scan(&inv.ID, &inv.Owner, &inv.Name, &inv.Type, &inv.Value, &account, &budget); err != nil {
		return inv, err
	}
	inv.AccountID = fromNull(account)
	inv.BudgetID = fromNull(budget)
	return inv, nil
}

func (r investments) FindByID(ctx context.Context, id int64) (core.Investment, error) {
	inv, err := queryOne(ctx, r.q, scanInvestment, "SELECT "+investmentCols+" FROM investments WHERE id = ?", id)
	if err != nil {
		return inv, fmt.Errorf("find investment %d: %w", id, err)
	}
	return inv, nil
}

func (r investments) FindByOwner(ctx context.Context, owner core.Owner) ([]core.Investment, error) {
	out, err := queryMany(ctx, r.q, scanInvestment, "SELECT "+investmentCols+" FROM investments WHERE owner = ? ORDER BY id", owner)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	return out, nil
}

func (r investments) Save(ctx context.Context, inv core.Investment) (core.Investment, error) {
	if inv.ID == 0 {
		id, err := insert(ctx, r.q,
			"INSERT INTO investments (owner, name, type, value, account_id, budget_id) VALUES (?, ?, ?, ?, ?, ?)",
			inv.Owner, inv.Name, inv.Type, inv.Value.String(), toNull(inv.AccountID), toNull(inv.BudgetID))
		if err != nil {
			return inv, fmt.Errorf("insert investment: %w", classify(err))
		}
		inv.ID = id
		return inv, nil
	}
	err := execOne(ctx, r.q,
		"UPDATE investments SET name = ?, type = ?, value = ?, account_id = ?, budget_id = ? WHERE id = ?",
		inv.Name, inv.Type, inv.Value.String(), toNull(inv.AccountID), toNull(inv.BudgetID), inv.ID)
	if err != nil {
		return inv, fmt.Errorf("update investment %d: %w", inv.ID, classify(err))
	}
	return inv, nil
}

func (r investments) Delete(ctx context.Context, id int64) error {
	if err := execOne(ctx, r.q, "DELETE FROM investments WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete investment %d: %w", id, classify(err))
	}
	return nil
}

func (r investments) UnlinkAccount(ctx context.Context, accountID int64) error {
	if _, err := r.q.ExecContext(ctx, "UPDATE investments SET account_id = NULL WHERE account_id = ?", accountID); err != nil {
		return fmt.Errorf("unlink account %d: %w", accountID, err)
	}
	return nil
}

func (r investments) UnlinkBudget(ctx context.Context, budgetID int64) error {
	if _, err := r.q.ExecContext(ctx, "UPDATE investments SET budget_id = NULL WHERE budget_id = ?", budgetID); err != nil {
		return fmt.Errorf("unlink budget %d: %w", budgetID, err)
	}
	return nil
}

func toNull(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func fromNull(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

var (
	_ storage.Accounts    = accounts{}
	_ storage.Budgets     = budgets{}
	_ storage.Debts       = debts{}
	_ storage.Credits     = credits{}
	_ storage.Investments = investments{}
)
