package ledger

import (
	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// SpendBudget lowers the remaining allocation by amount.
func SpendBudget(b *core.Budget, amount decimal.Decimal) {
	b.Amount = b.Amount.Sub(amount)
}

// CloseBudget moves the remaining allocation into target when one is given.
// The budget itself is left for the caller to delete.
func CloseBudget(b *core.Budget, target *core.Account) {
	if target == nil {
		return
	}
	Credit(target, b.Amount)
}
