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

type BudgetInput struct {
	Name   string
	Amount decimal.Decimal
}

func (s *LedgerService) CreateBudget(ctx context.Context, owner core.Owner, in BudgetInput) (core.Budget, error) {
	b := core.Budget{Owner: owner, Name: strings.TrimSpace(in.Name), Amount: in.Amount}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := nonNegativeBudget(in.Amount); err != nil {
		return core.Budget{}, err
	}

	err := s.run(ctx, OpCreateBudget, owner, nil, func(ctx context.Context, tx storage.Tx) ([]core.EntityRef, error) {
		var err error
		if b, err = tx.Budgets().Save(ctx, b); err != nil {
			return nil, err
		}
		return []core.EntityRef{core.Ref(core.KindBudget, b.ID)}, nil
	})
	return b, err
}

// UpdateBudget overwrites name and remaining amount.
func (s *LedgerService) UpdateBudget(ctx context.Context, owner core.Owner, id int64, in BudgetInput) (core.Budget, error) {
	if err := nonNegativeBudget(in.Amount); err != nil {
		return core.Budget{}, err
	}

	var b core.Budget
	keys := lock.Keys(core.Ref(core.KindBudget, id))
	err := s.run(ctx, OpUpdateBudget, owner, keys, func(ctx context.Context, tx storage.Tx) ([]core.EntityRef, error) {
		var err error
		if b, err = own[core.Budget](ctx, tx.Budgets(), owner, id); err != nil {
			return nil, err
		}
		b.Name = strings.TrimSpace(in.Name)
		b.Amount = in.Amount
		if err := b.Validate(); err != nil {
			return nil, err
		}
		if b, err = tx.Budgets().Save(ctx, b); err != nil {
			return nil, err
		}
		return []core.EntityRef{core.Ref(core.KindBudget, id)}, nil
	})
	return b, err
}

// CloseBudget deletes the budget. With transfer set and an account given, the
// remaining amount is credited to that account first. Investments funded from
// the budget keep their value but lose the budget link.
func (s *LedgerService) CloseBudget(ctx context.Context, owner core.Owner, id int64, transfer bool, accountID *int64) (Closed, error) {
	res := Closed{ID: id}
	keys := lock.Keys(core.Ref(core.KindBudget, id), opt(core.KindAccount, accountID))
	err := s.run(ctx, OpCloseBudget, owner, keys, func(ctx context.Context, tx storage.Tx) ([]core.EntityRef, error) {
		res.Account = nil
		b, err := own[core.Budget](ctx, tx.Budgets(), owner, id)
		if err != nil {
			return nil, err
		}
		account, err := ownOptional[core.Account](ctx, tx.Accounts(), owner, accountID)
		if err != nil {
			return nil, err
		}

		touched := []core.EntityRef{core.Ref(core.KindBudget, id)}
		if transfer && account != nil {
			ledger.CloseBudget(&b, account)
			saved, err := tx.Accounts().Save(ctx, *account)
			if err != nil {
				return nil, err
			}
			res.Account = &saved
			touched = append(touched, core.Ref(core.KindAccount, saved.ID))
		}
		if err := tx.Investments().UnlinkBudget(ctx, id); err != nil {
			return nil, err
		}
		if err := tx.Budgets().Delete(ctx, id); err != nil {
			return nil, err
		}
		return touched, nil
	})
	if err != nil {
		return Closed{}, err
	}
	return res, nil
}

func (s *LedgerService) ListBudgets(ctx context.Context, owner core.Owner) ([]core.Budget, error) {
	var out []core.Budget
	err := s.view(ctx, owner, func(ctx context.Context, tx storage.Tx) error {
		var err error
		out, err = tx.Budgets().FindByOwner(ctx, owner)
		return err
	})
	return out, err
}

func (s *LedgerService) GetBudget(ctx context.Context, owner core.Owner, id int64) (core.Budget, error) {
	var b core.Budget
	err := s.view(ctx, owner, func(ctx context.Context, tx storage.Tx) error {
		var err error
		b, err = own[core.Budget](ctx, tx.Budgets(), owner, id)
		return err
	})
	return b, err
}

// Budgets may still go negative through debits; only caller-set amounts are checked.
func nonNegativeBudget(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return core.Validation("budget amount cannot be negative")
	}
	return nil
}
