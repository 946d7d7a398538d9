// Package ledger holds the balance-propagation rules between entities.
//
// Every function here is pure: it mutates the values it is handed and never
// touches storage. Callers own loading, ownership checks and persistence.
package ledger

import (
	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// Credit adds amount to the account balance.
func Credit(a *core.Account, amount decimal.Decimal) {
	a.Balance = a.Balance.Add(amount)
}

// Debit subtracts amount from the account balance. The balance may go negative.
func Debit(a *core.Account, amount decimal.Decimal) {
	a.Balance = a.Balance.Sub(amount)
}
