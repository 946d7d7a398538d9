package ledger

import (
	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// OpenDebt applies the opening cash movement of d to linked.
// Lending takes money out of the account, borrowing brings it in.
func OpenDebt(d core.Debt, linked *core.Account) {
	if linked == nil {
		return
	}
	if d.Given {
		Debit(linked, d.Amount)
	} else {
		Credit(linked, d.Amount)
	}
}

// AdjustDebt sets a new amount and direction on d and moves the difference
// through linked. The new given flag decides the sign of the whole difference.
// It returns the applied difference.
func AdjustDebt(d *core.Debt, newAmount decimal.Decimal, given bool, linked *core.Account) decimal.Decimal {
	newAmount = core.ClampZero(newAmount)
	diff := newAmount.Sub(d.Amount)
	d.Amount = newAmount
	d.Given = given

	if linked != nil && !diff.IsZero() {
		if given {
			Debit(linked, diff)
		} else {
			Credit(linked, diff)
		}
	}
	return diff
}

// SettleDebt moves the remaining amount of d through linked before closing.
// Collecting a loan credits the account, repaying a borrowing debits it.
func SettleDebt(d core.Debt, linked *core.Account) {
	if linked == nil || !d.Amount.IsPositive() {
		return
	}
	if d.Given {
		Credit(linked, d.Amount)
	} else {
		Debit(linked, d.Amount)
	}
}

// ReduceDebt lowers d by amount, never below zero.
// It reports whether the debt is cleared and should be deleted.
func ReduceDebt(d *core.Debt, amount decimal.Decimal) bool {
	d.Amount = core.ClampZero(d.Amount.Sub(amount))
	return d.Amount.IsZero()
}
