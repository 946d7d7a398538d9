package ledger

import (
	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// OpenInvestment funds inv from account and budget when given, and links both.
// When both are given each is debited by the full value.
func OpenInvestment(inv *core.Investment, account *core.Account, budget *core.Budget) {
	if account != nil {
		Debit(account, inv.Value)
		id := account.ID
		inv.AccountID = &id
	}
	if budget != nil {
		SpendBudget(budget, inv.Value)
		id := budget.ID
		inv.BudgetID = &id
	}
}

// AdjustInvestment changes the value of inv by change. Each supplied source is
// debited by the same signed change and becomes the investment's new link.
func AdjustInvestment(inv *core.Investment, change decimal.Decimal, account *core.Account, budget *core.Budget) {
	inv.Value = inv.Value.Add(change)
	if account != nil {
		Debit(account, change)
		id := account.ID
		inv.AccountID = &id
	}
	if budget != nil {
		SpendBudget(budget, change)
		id := budget.ID
		inv.BudgetID = &id
	}
}

// CloseInvestment returns the current value of inv to account when
// addToAccount is set. The caller deletes the investment either way.
func CloseInvestment(inv core.Investment, account *core.Account, addToAccount bool) bool {
	if !addToAccount || account == nil {
		return false
	}
	Credit(account, inv.Value)
	return true
}
