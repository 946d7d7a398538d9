package services

import (
	"context"

	"ledger/internal/core"
)

// EventPublisher receives committed ledger events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, e core.Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishEvent(context.Context, core.Event) error { return nil }

// Use case names carried in events and logs.
const (
	OpCreateAccount    = "createAccount"
	OpUpdateAccount    = "updateAccount"
	OpDeleteAccount    = "deleteAccount"
	OpAddCredit        = "addCredit"
	OpDeleteCredit     = "deleteCredit"
	OpAddDebt          = "addDebt"
	OpUpdateDebt       = "updateDebt"
	OpCloseDebt        = "closeDebt"
	OpCreateBudget     = "createBudget"
	OpUpdateBudget     = "updateBudget"
	OpCloseBudget      = "closeBudget"
	OpCreateInvestment = "createInvestment"
	OpUpdateInvestment = "updateInvestment"
	OpCloseInvestment  = "closeInvestment"
)
