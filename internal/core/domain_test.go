package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAccountValidate(t *testing.T) {
	cases := []struct {
		a  Account
		ok bool
	}{
		{Account{Name: "Checking", Type: "bank"}, true},
		{Account{Name: "Wallet", Balance: decimal.RequireFromString("-10")}, true}, // negative balances allowed
		{Account{Name: ""}, false},
		{Account{Name: "   "}, false},
		{Account{Name: strings.Repeat("x", 121)}, false},
		{Account{Name: "ok", Type: strings.Repeat("t", 121)}, false},
	}
	for i, tc := range cases {
		err := tc.a.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDebtValidate(t *testing.T) {
	if err := (Debt{Counterparty: "Bob", Amount: decimal.Zero}).Validate(); err != nil {
		t.Fatalf("expected ok for zero amount, got %v", err)
	}
	if err := (Debt{Counterparty: "Bob", Amount: decimal.NewFromInt(-1)}).Validate(); err == nil {
		t.Fatalf("expected error for negative amount")
	}
	if err := (Debt{Amount: decimal.NewFromInt(1)}).Validate(); err == nil {
		t.Fatalf("expected error for missing person")
	}
}

func TestCreditValidate(t *testing.T) {
	good := Credit{Source: "Salary", Amount: decimal.RequireFromString("10.50"), AccountID: 1}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Credit{
		{Source: "", Amount: decimal.NewFromInt(1)},
		{Source: "a", Amount: decimal.Zero},
		{Source: "a", Amount: decimal.NewFromInt(-5)},
		{Source: "a", Amount: decimal.NewFromInt(1), Note: strings.Repeat("n", 501)},
	}
	for i, c := range bads {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestInvestmentValidate(t *testing.T) {
	if err := (Investment{Name: "ETF", Type: "fund", Value: decimal.NewFromInt(-3)}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Investment{Name: "ETF"}).Validate(); err == nil {
		t.Fatalf("expected error for missing type")
	}
}

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		err  error
		kind error
		msg  string
	}{
		{NotFound(KindAccount, 7), ErrNotFound, "account 7 not found"},
		{Ownership(KindBudget, 3), ErrOwnership, "budget 3 does not belong to user"},
		{Validation("bad"), ErrValidation, "bad"},
		{Conflict("stale"), ErrConflict, "stale"},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.kind) {
			t.Fatalf("%v: expected kind %v", tc.err, tc.kind)
		}
		if tc.err.Error() != tc.msg {
			t.Fatalf("expected %q, got %q", tc.msg, tc.err.Error())
		}
		if !IsBusiness(tc.err) {
			t.Fatalf("%v should be a business error", tc.err)
		}
	}
	if IsBusiness(errors.New("disk full")) {
		t.Fatalf("plain error must not be a business error")
	}
}

func TestIsLinkedTo(t *testing.T) {
	id := int64(4)
	inv := Investment{AccountID: &id}
	if !inv.IsLinkedTo(4) || inv.IsLinkedTo(5) {
		t.Fatalf("unexpected link result")
	}
	if (Investment{}).IsLinkedTo(4) {
		t.Fatalf("unlinked investment reported as linked")
	}
}
