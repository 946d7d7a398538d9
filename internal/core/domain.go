package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	KindAccount    Kind = "account"
	KindBudget     Kind = "budget"
	KindDebt       Kind = "debt"
	KindCredit     Kind = "credit"
	KindInvestment Kind = "investment"
)

const maxNameLength = 120

type (
	// Owner is the opaque identity key of the acting user.
	Owner string

	Kind string

	Account struct {
		ID      int64
		Owner   Owner
		Name    string
		Type    string // free-form tag
		Balance decimal.Decimal
	}

	Budget struct {
		ID     int64
		Owner  Owner
		Name   string
		Amount decimal.Decimal // remaining allocation
	}

	Debt struct {
		ID           int64
		Owner        Owner
		Counterparty string
		Amount       decimal.Decimal
		Given        bool // true: lent by the owner, false: borrowed by the owner
	}

	Credit struct {
		ID        int64
		Owner     Owner
		Source    string
		Amount    decimal.Decimal
		Note      string
		AccountID int64
	}

	Investment struct {
		ID        int64
		Owner     Owner
		Name      string
		Type      string
		Value     decimal.Decimal // current worth
		AccountID *int64
		BudgetID  *int64
	}

	// EntityRef names a single persisted row.
	EntityRef struct {
		Kind Kind
		ID   int64
	}
)

// Entity is implemented by every owned record.
type Entity interface {
	OwnedBy() Owner
	EntityKind() Kind
}

func (a Account) OwnedBy() Owner    { return a.Owner }
func (b Budget) OwnedBy() Owner     { return b.Owner }
func (d Debt) OwnedBy() Owner       { return d.Owner }
func (c Credit) OwnedBy() Owner     { return c.Owner }
func (i Investment) OwnedBy() Owner { return i.Owner }

func (Account) EntityKind() Kind    { return KindAccount }
func (Budget) EntityKind() Kind     { return KindBudget }
func (Debt) EntityKind() Kind       { return KindDebt }
func (Credit) EntityKind() Kind     { return KindCredit }
func (Investment) EntityKind() Kind { return KindInvestment }

func (o Owner) Validate() error {
	if strings.TrimSpace(string(o)) == "" {
		return Validation("owner is required")
	}
	return nil
}

func (a Account) Validate() error {
	if err := validateName("account name", a.Name); err != nil {
		return err
	}
	if len(a.Type) > maxNameLength {
		return Validation("account type too long (max 120 characters)")
	}
	return nil
}

func (b Budget) Validate() error {
	return validateName("budget name", b.Name)
}

func (d Debt) Validate() error {
	if err := validateName("person", d.Counterparty); err != nil {
		return err
	}
	if d.Amount.IsNegative() {
		return Validation("debt amount cannot be negative")
	}
	return nil
}

func (c Credit) Validate() error {
	if err := validateName("credit source", c.Source); err != nil {
		return err
	}
	if !c.Amount.IsPositive() {
		return Validation("credit amount must be positive")
	}
	if len(c.Note) > 500 {
		return Validation("note too long (max 500 characters)")
	}
	return nil
}

func (i Investment) Validate() error {
	if err := validateName("investment name", i.Name); err != nil {
		return err
	}
	if strings.TrimSpace(i.Type) == "" {
		return Validation("investment type is required")
	}
	return nil
}

// IsLinkedTo reports whether the investment references the given account.
func (i Investment) IsLinkedTo(accountID int64) bool {
	return i.AccountID != nil && *i.AccountID == accountID
}

func validateName(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return Validation(field + " is required")
	}
	if len(v) > maxNameLength {
		return Validation(field + " too long (max 120 characters)")
	}
	return nil
}
