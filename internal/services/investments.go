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

type CreateInvestmentInput struct {
	Name      string
	Type      string
	Value     decimal.Decimal
	AccountID *int64
	BudgetID  *int64
}

type UpdateInvestmentInput struct {
	Change    decimal.Decimal
	AccountID *int64
	BudgetID  *int64
}

type InvestmentResult struct {
	Investment core.Investment
	Account    *core.Account
	Budget     *core.Budget
}

// CreateInvestment opens an investment. Each given source is debited by the
// full value, so funding from both an account and a budget debits both.
func (s *LedgerService) CreateInvestment(ctx context.Context, owner core.Owner, in CreateInvestmentInput) (InvestmentResult, error) {
	inv := core.Investment{
		Owner: owner,
		Name:  strings.TrimSpace(in.Name),
		Type:  strings.TrimSpace(in.Type),
		Value: in.Value,
	}
	if inv.Name == "" {
		inv.Name = inv.Type
	}
	if err := inv.Validate(); err != nil {
		return InvestmentResult{}, err
	}

	var res InvestmentResult
	keys := lock.Keys(opt(core.KindAccount, in.AccountID), opt(core.KindBudget, in.BudgetID))
	err := s.run(ctx, OpCreateInvestment, owner, keys, func(ctx context.Context, tx storage.Tx) ([]core.EntityRef, error) {
		res = InvestmentResult{}
		account, budget, err := s.sources(ctx, tx, owner, in.AccountID, in.BudgetID)
		if err != nil {
			return nil, err
		}

		v := inv
		ledger.OpenInvestment(&v, account, budget)

		touched, err := s.saveSources(ctx, tx, account, budget, &res)
		if err != nil {
			return nil, err
		}
		if res.Investment, err = tx.Investments().Save(ctx, v); err != nil {
			return nil, err
		}
		return append(touched, core.Ref(core.KindInvestment, res.Investment.ID)), nil
	})
	if err != nil {
		return InvestmentResult{}, err
	}
	return res, nil
}

// UpdateInvestment moves change into the investment. Each given source is
// debited by the same signed change and becomes the new link.
func (s *LedgerService) UpdateInvestment(ctx context.Context, owner core.Owner, id int64, in UpdateInvestmentInput) (InvestmentResult, error) {
	var res InvestmentResult
	keys := lock.Keys(
		core.Ref(core.KindInvestment, id),
		opt(core.KindAccount, in.AccountID),
		opt(core.KindBudget, in.BudgetID),
	)
	err := s.run(ctx, OpUpdateInvestment, owner, keys, func(ctx context.Context, tx storage.Tx) ([]core.EntityRef, error) {
		res = InvestmentResult{}
		inv, err := own[core.Investment](ctx, tx.Investments(), owner, id)
		if err != nil {
			return nil, err
		}
		account, budget, err := s.sources(ctx, tx, owner, in.AccountID, in.BudgetID)
		if err != nil {
			return nil, err
		}

		ledger.AdjustInvestment(&inv, in.Change, account, budget)

		touched, err := s.saveSources(ctx, tx, account, budget, &res)
		if err != nil {
			return nil, err
		}
		if res.Investment, err = tx.Investments().Save(ctx, inv); err != nil {
			return nil, err
		}
		return append(touched, core.Ref(core.KindInvestment, id)), nil
	})
	if err != nil {
		return InvestmentResult{}, err
	}
	return res, nil
}

// CloseInvestment deletes the investment. With addToAccount set and an
// account linked, the current value is credited to that account first.
func (s *LedgerService) CloseInvestment(ctx context.Context, owner core.Owner, id int64, addToAccount bool) (Closed, error) {
	// The linked account is only known after reading the investment.
	var linked *int64
	if addToAccount {
		inv, err := s.GetInvestment(ctx, owner, id)
		if err != nil {
			return Closed{}, err
		}
		linked = inv.AccountID
	}

	res := Closed{ID: id}
	keys := lock.Keys(core.Ref(core.KindInvestment, id), opt(core.KindAccount, linked))
	err := s.run(ctx, OpCloseInvestment, owner, keys, func(ctx context.Context, tx storage.Tx) ([]core.EntityRef, error) {
		res.Account = nil
		inv, err := own[core.Investment](ctx, tx.Investments(), owner, id)
		if err != nil {
			return nil, err
		}

		touched := []core.EntityRef{core.Ref(core.KindInvestment, id)}
		if addToAccount && inv.AccountID != nil {
			if linked == nil || *linked != *inv.AccountID {
				return nil, core.Conflict("investment link changed concurrently, retry the operation")
			}
			account, err := own[core.Account](ctx, tx.Accounts(), owner, *inv.AccountID)
			if err != nil {
				return nil, err
			}
			if ledger.CloseInvestment(inv, &account, addToAccount) {
				saved, err := tx.Accounts().Save(ctx, account)
				if err != nil {
					return nil, err
				}
				res.Account = &saved
				touched = append(touched, core.Ref(core.KindAccount, saved.ID))
			}
		}
		if err := tx.Investments().Delete(ctx, id); err != nil {
			return nil, err
		}
		return touched, nil
	})
	if err != nil {
		return Closed{}, err
	}
	return res, nil
}

func (s *LedgerService) GetInvestment(ctx context.Context, owner core.Owner, id int64) (core.Investment, error) {
	var inv core.Investment
	err := s.view(ctx, owner, func(ctx context.Context, tx storage.Tx) error {
		var err error
		inv, err = own[core.Investment](ctx, tx.Investments(), owner, id)
		return err
	})
	return inv, err
}

func (s *LedgerService) ListInvestments(ctx context.Context, owner core.Owner) ([]core.Investment, error) {
	var out []core.Investment
	err := s.view(ctx, owner, func(ctx context.Context, tx storage.Tx) error {
		var err error
		out, err = tx.Investments().FindByOwner(ctx, owner)
		return err
	})
	return out, err
}

func (s *LedgerService) sources(ctx context.Context, tx storage.Tx, owner core.Owner, accountID, budgetID *int64) (*core.Account, *core.Budget, error) {
	account, err := ownOptional[core.Account](ctx, tx.Accounts(), owner, accountID)
	if err != nil {
		return nil, nil, err
	}
	budget, err := ownOptional[core.Budget](ctx, tx.Budgets(), owner, budgetID)
	if err != nil {
		return nil, nil, err
	}
	return account, budget, nil
}

func (s *LedgerService) saveSources(ctx context.Context, tx storage.Tx, account *core.Account, budget *core.Budget, res *InvestmentResult) ([]core.EntityRef, error) {
	var touched []core.EntityRef
	if account != nil {
		saved, err := tx.Accounts().Save(ctx, *account)
		if err != nil {
			return nil, err
		}
		res.Account = &saved
		touched = append(touched, core.Ref(core.KindAccount, saved.ID))
	}
	if budget != nil {
		saved, err := tx.Budgets().Save(ctx, *budget)
		if err != nil {
			return nil, err
		}
		res.Budget = &saved
		touched = append(touched, core.Ref(core.KindBudget, saved.ID))
	}
	return touched, nil
}
