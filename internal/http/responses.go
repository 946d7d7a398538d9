package http

import (
	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/services"
)

// Amounts are encoded as JSON strings so no client parses them as floats.

type accountResponse struct {
	ID          int64           `json:"id"`
	AccountName string          `json:"accountName"`
	Type        string          `json:"type"`
	Balance     decimal.Decimal `json:"balance"`
}

type creditResponse struct {
	ID        int64           `json:"id"`
	Source    string          `json:"source"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note"`
	AccountID int64           `json:"accountId"`
}

type debtResponse struct {
	ID     int64           `json:"id"`
	Person string          `json:"person"`
	Amount decimal.Decimal `json:"amount"`
	Given  bool            `json:"given"`
}

type budgetResponse struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type investmentResponse struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Value     decimal.Decimal `json:"value"`
	AccountID *int64          `json:"accountId"`
	BudgetID  *int64          `json:"budgetId"`
}

type addCreditResponse struct {
	Credit      creditResponse  `json:"credit"`
	Account     accountResponse `json:"account"`
	Debt        *debtResponse   `json:"debt,omitempty"`
	DebtDeleted bool            `json:"debtDeleted"`
}

type debtResultResponse struct {
	Debt    debtResponse     `json:"debt"`
	Account *accountResponse `json:"account,omitempty"`
}

type investmentResultResponse struct {
	Investment investmentResponse `json:"investment"`
	Account    *accountResponse   `json:"account,omitempty"`
	Budget     *budgetResponse    `json:"budget,omitempty"`
}

type closedResponse struct {
	ID      int64            `json:"id"`
	Deleted bool             `json:"deleted"`
	Account *accountResponse `json:"account,omitempty"`
}

func toAccount(a core.Account) accountResponse {
	return accountResponse{ID: a.ID, AccountName: a.Name, Type: a.Type, Balance: a.Balance}
}

func toAccountPtr(a *core.Account) *accountResponse {
	if a == nil {
		return nil
	}
	r := toAccount(*a)
	return &r
}

func toCredit(c core.Credit) creditResponse {
	return creditResponse{ID: c.ID, Source: c.Source, Amount: c.Amount, Note: c.Note, AccountID: c.AccountID}
}

func toDebt(d core.Debt) debtResponse {
	return debtResponse{ID: d.ID, Person: d.Counterparty, Amount: d.Amount, Given: d.Given}
}

func toBudget(b core.Budget) budgetResponse {
	return budgetResponse{ID: b.ID, Name: b.Name, Amount: b.Amount}
}

func toInvestment(i core.Investment) investmentResponse {
	return investmentResponse{ID: i.ID, Name: i.Name, Type: i.Type, Value: i.Value, AccountID: i.AccountID, BudgetID: i.BudgetID}
}

func toClosed(c services.Closed) closedResponse {
	return closedResponse{ID: c.ID, Deleted: true, Account: toAccountPtr(c.Account)}
}

func mapAll[T, R any](in []T, f func(T) R) []R {
	out := make([]R, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}
