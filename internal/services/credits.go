package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/lock"
	"ledger/internal/storage"
)

type AddCreditInput struct {
	AccountID int64
	Source    string
	Amount    decimal.Decimal
	Note      string
	RepayDebt bool
}

type CreditResult struct {
	Credit  core.Credit
	Account core.Account
	// Debt is the offset debt after reduction, nil when none applied.
	Debt        *core.Debt
	DebtDeleted bool
}

// AddCredit records incoming funds on an account. With RepayDebt set, the
// first open debt whose counterparty equals the source is reduced by the
// amount and deleted once it reaches zero. The account is credited in full
// either way.
func (s *LedgerService) AddCredit(ctx context.Context, owner core.Owner, in AddCreditInput) (CreditResult, error) {
	c := core.Credit{
		Owner:     owner,
		Source:    strings.TrimSpace(in.Source),
		Amount:    in.Amount,
		Note:      strings.TrimSpace(in.Note),
		AccountID: in.AccountID,
	}
	if err := c.Validate(); err != nil {
		return CreditResult{}, err
	}
	if err := owner.Validate(); err != nil {
		return CreditResult{}, err
	}

	// Resolve the offset debt up front so its row can be locked too.
	var debtID int64
	if in.RepayDebt {
		err := s.store.View(ctx, func(ctx context.Context, tx storage.Tx) error {
			d, err := tx.Debts().FindByCounterparty(ctx, owner, c.Source)
			if errors.Is(err, storage.ErrNotFound) {
				return nil
			}
			debtID = d.ID
			return err
		})
		if err != nil {
			return CreditResult{}, translate(err)
		}
	}

	var res CreditResult
	keys := lock.Keys(core.Ref(core.KindAccount, in.AccountID), core.Ref(core.KindDebt, debtID))
	err := s.run(ctx, OpAddCredit, owner, keys, func(ctx context.Context, tx storage.Tx) ([]core.EntityRef, error) {
		res = CreditResult{}
		account, err := own[core.Account](ctx, tx.Accounts(), owner, in.AccountID)
		if err != nil {
			return nil, err
		}

		var debt *core.Debt
		if debtID != 0 {
			d, err := tx.Debts().FindByCounterparty(ctx, owner, c.Source)
			switch {
			case errors.Is(err, storage.ErrNotFound):
				// settled concurrently, nothing to offset
			case err != nil:
				return nil, err
			case d.ID != debtID:
				return nil, core.Conflict("matching debt changed concurrently, retry the operation")
			default:
				debt = &d
			}
		}

		offset := ledger.RecordCredit(c, &account, debt, in.RepayDebt)

		touched := []core.EntityRef{core.Ref(core.KindAccount, account.ID)}
		switch offset {
		case ledger.OffsetCleared:
			if err := tx.Debts().Delete(ctx, debt.ID); err != nil {
				return nil, err
			}
			res.DebtDeleted = true
			res.Debt = debt
			touched = append(touched, core.Ref(core.KindDebt, debt.ID))
		case ledger.OffsetReduced:
			saved, err := tx.Debts().Save(ctx, *debt)
			if err != nil {
				return nil, err
			}
			res.Debt = &saved
			touched = append(touched, core.Ref(core.KindDebt, debt.ID))
		}

		if res.Account, err = tx.Accounts().Save(ctx, account); err != nil {
			return nil, err
		}
		if res.Credit, err = tx.Credits().Save(ctx, c); err != nil {
			return nil, err
		}
		return append(touched, core.Ref(core.KindCredit, res.Credit.ID)), nil
	})
	if err != nil {
		return CreditResult{}, err
	}
	return res, nil
}

// DeleteCredit removes the credit record only. Balances are not reverted.
func (s *LedgerService) DeleteCredit(ctx context.Context, owner core.Owner, id int64) error {
	return s.run(ctx, OpDeleteCredit, owner, nil, func(ctx context.Context, tx storage.Tx) ([]core.EntityRef, error) {
		if _, err := own[core.Credit](ctx, tx.Credits(), owner, id); err != nil {
			return nil, err
		}
		if err := tx.Credits().Delete(ctx, id); err != nil {
			return nil, err
		}
		return []core.EntityRef{core.Ref(core.KindCredit, id)}, nil
	})
}

func (s *LedgerService) GetCredit(ctx context.Context, owner core.Owner, id int64) (core.Credit, error) {
	var c core.Credit
	err := s.view(ctx, owner, func(ctx context.Context, tx storage.Tx) error {
		var err error
		c, err = own[core.Credit](ctx, tx.Credits(), owner, id)
		return err
	})
	return c, err
}

func (s *LedgerService) ListCredits(ctx context.Context, owner core.Owner) ([]core.Credit, error) {
	var out []core.Credit
	err := s.view(ctx, owner, func(ctx context.Context, tx storage.Tx) error {
		var err error
		out, err = tx.Credits().FindByOwner(ctx, owner)
		return err
	})
	return out, err
}
