package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/lock"
	"ledger/internal/storage"
)

type CreateAccountInput struct {
	Name           string
	Type           string
	InitialBalance *decimal.Decimal
}

func (s *LedgerService) CreateAccount(ctx context.Context, owner core.Owner, in CreateAccountInput) (core.Account, error) {
	a := core.Account{Owner: owner, Name: strings.TrimSpace(in.Name), Type: strings.TrimSpace(in.Type)}
	if in.InitialBalance != nil {
		a.Balance = *in.InitialBalance
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}

	err := s.run(ctx, OpCreateAccount, owner, nil, func(ctx context.Context, tx storage.Tx) ([]core.EntityRef, error) {
		var err error
		a, err = tx.Accounts().Save(ctx, a)
		if err != nil {
			return nil, err
		}
		return []core.EntityRef{core.Ref(core.KindAccount, a.ID)}, nil
	})
	return a, err
}

type UpdateAccountInput struct {
	Name    string
	Type    string
	Balance decimal.Decimal
}

// UpdateAccount overwrites the account fields, balance included.
func (s *LedgerService) UpdateAccount(ctx context.Context, owner core.Owner, id int64, in UpdateAccountInput) (core.Account, error) {
	var a core.Account
	keys := lock.Keys(core.Ref(core.KindAccount, id))
	err := s.run(ctx, OpUpdateAccount, owner, keys, func(ctx context.Context, tx storage.Tx) ([]core.EntityRef, error) {
		var err error
		if a, err = own[core.Account](ctx, tx.Accounts(), owner, id); err != nil {
			return nil, err
		}
		a.Name = strings.TrimSpace(in.Name)
		a.Type = strings.TrimSpace(in.Type)
		a.Balance = in.Balance
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if a, err = tx.Accounts().Save(ctx, a); err != nil {
			return nil, err
		}
		return []core.EntityRef{core.Ref(core.KindAccount, id)}, nil
	})
	return a, err
}

// DeleteAccount removes the account together with its credits. Investments
// pointing at it lose their account link.
func (s *LedgerService) DeleteAccount(ctx context.Context, owner core.Owner, id int64) error {
	keys := lock.Keys(core.Ref(core.KindAccount, id))
	return s.run(ctx, OpDeleteAccount, owner, keys, func(ctx context.Context, tx storage.Tx) ([]core.EntityRef, error) {
		if _, err := own[core.Account](ctx, tx.Accounts(), owner, id); err != nil {
			return nil, err
		}
		if err := tx.Credits().DeleteByAccount(ctx, id); err != nil {
			return nil, err
		}
		if err := tx.Investments().UnlinkAccount(ctx, id); err != nil {
			return nil, err
		}
		if err := tx.Accounts().Delete(ctx, id); err != nil {
			return nil, err
		}
		return []core.EntityRef{core.Ref(core.KindAccount, id)}, nil
	})
}

func (s *LedgerService) GetAccount(ctx context.Context, owner core.Owner, id int64) (core.Account, error) {
	var a core.Account
	err := s.view(ctx, owner, func(ctx context.Context, tx storage.Tx) error {
		var err error
		a, err = own[core.Account](ctx, tx.Accounts(), owner, id)
		return err
	})
	return a, err
}

func (s *LedgerService) ListAccounts(ctx context.Context, owner core.Owner) ([]core.Account, error) {
	var out []core.Account
	err := s.view(ctx, owner, func(ctx context.Context, tx storage.Tx) error {
		var err error
		out, err = tx.Accounts().FindByOwner(ctx, owner)
		return err
	})
	return out, err
}
