package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ledger/internal/core"
)

func TestJSONAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{`12.34`, "12.34", false},
		{`"12.34"`, "12.34", false},
		{`"12,34"`, "12.34", false},
		{`-0.5`, "-0.5", false},
		{`"0.1"`, "0.1", false},
		{`"1e3"`, "", true},
		{`""`, "", true},
		{`"abc"`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var a jsonAmount
			err := a.UnmarshalJSON([]byte(tt.in))
			if tt.wantErr {
				if !errors.Is(err, core.ErrValidation) {
					t.Errorf("UnmarshalJSON(%s) error = %v, want validation error", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("UnmarshalJSON(%s) error = %v", tt.in, err)
			}
			if a.String() != tt.want {
				t.Errorf("UnmarshalJSON(%s) = %s, want %s", tt.in, a.String(), tt.want)
			}
		})
	}
}

func TestJSONAmount_NilHelpers(t *testing.T) {
	var a *jsonAmount
	if !a.value().IsZero() {
		t.Error("nil amount value should be zero")
	}
	if a.ptr() != nil {
		t.Error("nil amount ptr should be nil")
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"source":"Salary","amount":"1500.50","note":"Nov"}`, ""},
		{"unknown fields ignored", `{"source":"Salary","amount":1,"extra":true}`, ""},
		{"missing amount", `{"source":"Salary"}`, "amount is required"},
		{"missing source", `{"amount":"1"}`, "source is required"},
		{"note too long", `{"source":"S","amount":"1","note":"` + strings.Repeat("x", 501) + `"}`, "note too long (max 500 characters)"},
		{"wrong type", `{"source":5,"amount":"1"}`, "malformed JSON body"},
		{"body too large", `{"source":"` + strings.Repeat("x", maxBodyBytes) + `"}`, "request body too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst creditRequest
			err := decodeJSON(req, &dst)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("decodeJSON() error = %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("decodeJSON() error = %v, want %q", err, tt.wantErr)
			}
			if !errors.Is(err, core.ErrValidation) {
				t.Errorf("decodeJSON() error should be a validation error, got %T", err)
			}
		})
	}
}

func TestQueryParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?accountId=7&transfer=true&changeAmount=-2,5&empty=", nil)

	id, err := queryID(req, "accountId")
	if err != nil || id == nil || *id != 7 {
		t.Errorf("queryID(accountId) = %v, %v; want 7", id, err)
	}
	if id, err := queryID(req, "budgetId"); err != nil || id != nil {
		t.Errorf("queryID(budgetId) = %v, %v; want nil, nil", id, err)
	}

	if v, err := queryBool(req, false, "missing", "transfer"); err != nil || !v {
		t.Errorf("queryBool() = %v, %v; want true from fallback name", v, err)
	}
	if v, err := queryBool(req, true, "empty"); err != nil || !v {
		t.Errorf("queryBool() = %v, %v; want default true", v, err)
	}

	amt, err := queryAmount(req, "changeAmount")
	if err != nil || amt.String() != "-2.5" {
		t.Errorf("queryAmount() = %v, %v; want -2.5", amt, err)
	}
	if _, err := queryAmount(req, "nope"); err == nil {
		t.Error("queryAmount() on missing param should fail")
	}
}

func TestPathID(t *testing.T) {
	for _, tt := range []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"1", 1, false},
		{"9223372036854775807", 9223372036854775807, false},
		{"0", 0, true},
		{"-4", 0, true},
		{"x", 0, true},
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetPathValue("id", tt.raw)
		got, err := pathID(req, "id")
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("pathID(%q) = %d, %v; want %d, err=%v", tt.raw, got, err, tt.want, tt.wantErr)
		}
	}
}
