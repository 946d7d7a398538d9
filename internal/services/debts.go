package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/lock"
	"ledger/internal/storage"
)

type AddDebtInput struct {
	Person    string
	Amount    decimal.Decimal
	Given     bool
	AccountID *int64
}

type UpdateDebtInput struct {
	// Person replaces the counterparty when non-empty.
	Person    string
	Amount    decimal.Decimal
	Given     bool
	AccountID *int64
}

type DebtResult struct {
	Debt    core.Debt
	Account *core.Account
}

// Closed reports the outcome of a close use case. Account is set when a
// linked account received the settlement.
type Closed struct {
	ID      int64
	Account *core.Account
}

func (s *LedgerService) AddDebt(ctx context.Context, owner core.Owner, in AddDebtInput) (DebtResult, error) {
	d := core.Debt{Owner: owner, Counterparty: strings.TrimSpace(in.Person), Amount: in.Amount, Given: in.Given}
	if err := d.Validate(); err != nil {
		return DebtResult{}, err
	}

	var res DebtResult
	keys := lock.Keys(opt(core.KindAccount, in.AccountID))
	err := s.run(ctx, OpAddDebt, owner, keys, func(ctx context.Context, tx storage.Tx) ([]core.EntityRef, error) {
		res = DebtResult{}
		account, err := ownOptional[core.Account](ctx, tx.Accounts(), owner, in.AccountID)
		if err != nil {
			return nil, err
		}

		ledger.OpenDebt(d, account)

		var touched []core.EntityRef
		if account != nil {
			saved, err := tx.Accounts().Save(ctx, *account)
			if err != nil {
				return nil, err
			}
			res.Account = &saved
			touched = append(touched, core.Ref(core.KindAccount, saved.ID))
		}
		if res.Debt, err = tx.Debts().Save(ctx, d); err != nil {
			return nil, err
		}
		return append(touched, core.Ref(core.KindDebt, res.Debt.ID)), nil
	})
	if err != nil {
		return DebtResult{}, err
	}
	return res, nil
}

// UpdateDebt sets a new amount and direction. A negative amount is clamped to
// zero. The linked account absorbs the difference using the new direction.
func (s *LedgerService) UpdateDebt(ctx context.Context, owner core.Owner, id int64, in UpdateDebtInput) (DebtResult, error) {
	var res DebtResult
	keys := lock.Keys(core.Ref(core.KindDebt, id), opt(core.KindAccount, in.AccountID))
	err := s.run(ctx, OpUpdateDebt, owner, keys, func(ctx context.Context, tx storage.Tx) ([]core.EntityRef, error) {
		res = DebtResult{}
		d, err := own[core.Debt](ctx, tx.Debts(), owner, id)
		if err != nil {
			return nil, err
		}
		account, err := ownOptional[core.Account](ctx, tx.Accounts(), owner, in.AccountID)
		if err != nil {
			return nil, err
		}

		if p := strings.TrimSpace(in.Person); p != "" {
			d.Counterparty = p
		}
		if err := d.Validate(); err != nil {
			return nil, err
		}
		diff := ledger.AdjustDebt(&d, in.Amount, in.Given, account)

		touched := []core.EntityRef{core.Ref(core.KindDebt, id)}
		if account != nil && !diff.IsZero() {
			saved, err := tx.Accounts().Save(ctx, *account)
			if err != nil {
				return nil, err
			}
			res.Account = &saved
			touched = append(touched, core.Ref(core.KindAccount, saved.ID))
		}
		if res.Debt, err = tx.Debts().Save(ctx, d); err != nil {
			return nil, err
		}
		return touched, nil
	})
	if err != nil {
		return DebtResult{}, err
	}
	return res, nil
}

// CloseDebt settles any remaining amount through the linked account and
// deletes the debt unconditionally.
func (s *LedgerService) CloseDebt(ctx context.Context, owner core.Owner, id int64, accountID *int64) (Closed, error) {
	res := Closed{ID: id}
	keys := lock.Keys(core.Ref(core.KindDebt, id), opt(core.KindAccount, accountID))
	err := s.run(ctx, OpCloseDebt, owner, keys, func(ctx context.Context, tx storage.Tx) ([]core.EntityRef, error) {
		res.Account = nil
		d, err := own[core.Debt](ctx, tx.Debts(), owner, id)
		if err != nil {
			return nil, err
		}
		account, err := ownOptional[core.Account](ctx, tx.Accounts(), owner, accountID)
		if err != nil {
			return nil, err
		}

		touched := []core.EntityRef{core.Ref(core.KindDebt, id)}
		if account != nil && d.Amount.IsPositive() {
			ledger.SettleDebt(d, account)
			saved, err := tx.Accounts().Save(ctx, *account)
			if err != nil {
				return nil, err
			}
			res.Account = &saved
			touched = append(touched, core.Ref(core.KindAccount, saved.ID))
		}
		if err := tx.Debts().Delete(ctx, id); err != nil {
			return nil, err
		}
		return touched, nil
	})
	if err != nil {
		return Closed{}, err
	}
	return res, nil
}

func (s *LedgerService) GetDebt(ctx context.Context, owner core.Owner, id int64) (core.Debt, error) {
	var d core.Debt
	err := s.view(ctx, owner, func(ctx context.Context, tx storage.Tx) error {
		var err error
		d, err = own[core.Debt](ctx, tx.Debts(), owner, id)
		return err
	})
	return d, err
}

func (s *LedgerService) ListDebts(ctx context.Context, owner core.Owner) ([]core.Debt, error) {
	var out []core.Debt
	err := s.view(ctx, owner, func(ctx context.Context, tx storage.Tx) error {
		var err error
		out, err = tx.Debts().FindByOwner(ctx, owner)
		return err
	})
	return out, err
}
