package ledger

import "ledger/internal/core"

// Offset describes what happened to a counterparty debt when a credit arrived.
type Offset int

const (
	OffsetNone Offset = iota
	OffsetReduced
	OffsetCleared
)

func (o Offset) String() string {
	switch o {
	case OffsetReduced:
		return "reduced"
	case OffsetCleared:
		return "cleared"
	default:
		return "none"
	}
}

// RecordCredit applies an incoming credit. When repay is set and debt is
// non-nil the debt is reduced by the credited amount regardless of its
// direction. The account always receives the full amount.
func RecordCredit(c core.Credit, account *core.Account, debt *core.Debt, repay bool) Offset {
	offset := OffsetNone
	if repay && debt != nil {
		if ReduceDebt(debt, c.Amount) {
			offset = OffsetCleared
		} else {
			offset = OffsetReduced
		}
	}
	Credit(account, c.Amount)
	return offset
}
