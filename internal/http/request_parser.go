// Package http provides the JSON API over the ledger service.
//
// This file holds request decoding: JSON bodies into validated DTOs, path ids,
// and the optional query parameters the ledger operations take.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

const maxBodyBytes = 1 << 20

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the shared validator. Field names in errors are the
// JSON names the caller sent.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// validateStruct reports the first failing field as a ValidationError.
func validateStruct(payload any) error {
	err := getValidator().Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return core.Validation(formatFieldError(fieldErrs[0]))
	}
	return core.Validation("invalid request")
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s too long (max %s characters)", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// decodeJSON reads a size-limited JSON body into dst and validates it.
func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return core.Validation("request body is required")
		case errors.As(err, &maxErr):
			return core.Validation("request body too large")
		default:
			var ve *core.Error
			if errors.As(err, &ve) {
				return ve
			}
			return core.Validation("malformed JSON body")
		}
	}
	return validateStruct(dst)
}

// jsonAmount accepts a JSON number or string, with dot or comma decimals.
type jsonAmount struct {
	decimal.Decimal
}

func (a *jsonAmount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := core.ParseAmount(s)
	if err != nil {
		return err
	}
	a.Decimal = d
	return nil
}

func (a *jsonAmount) value() decimal.Decimal {
	if a == nil {
		return decimal.Zero
	}
	return a.Decimal
}

func (a *jsonAmount) ptr() *decimal.Decimal {
	if a == nil {
		return nil
	}
	d := a.Decimal
	return &d
}

type accountRequest struct {
	AccountName string      `json:"accountName" validate:"required,max=120"`
	Type        string      `json:"type" validate:"max=120"`
	Balance     *jsonAmount `json:"balance"`
}

type updateAccountRequest struct {
	AccountName string      `json:"accountName" validate:"required,max=120"`
	Type        string      `json:"type" validate:"max=120"`
	Balance     *jsonAmount `json:"balance" validate:"required"`
}

type creditRequest struct {
	Source    string      `json:"source" validate:"required,max=120"`
	Amount    *jsonAmount `json:"amount" validate:"required"`
	Note      string      `json:"note" validate:"max=500"`
	RepayDebt bool        `json:"repayDebt"`
}

type debtRequest struct {
	Person string      `json:"person" validate:"required,max=120"`
	Amount *jsonAmount `json:"amount" validate:"required"`
	Given  *bool       `json:"given" validate:"required"`
}

// An empty person on update keeps the stored counterparty.
type updateDebtRequest struct {
	Person string      `json:"person" validate:"max=120"`
	Amount *jsonAmount `json:"amount" validate:"required"`
	Given  *bool       `json:"given" validate:"required"`
}

type budgetRequest struct {
	Name   string      `json:"name" validate:"required,max=120"`
	Amount *jsonAmount `json:"amount" validate:"required"`
}

type investmentRequest struct {
	Name      string      `json:"name" validate:"max=120"`
	Type      string      `json:"type" validate:"required,max=120"`
	Value     *jsonAmount `json:"value" validate:"required"`
	AccountID *int64      `json:"accountId"`
	BudgetID  *int64      `json:"budgetId"`
}

// pathID parses a positive integer path segment.
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.Validation(fmt.Sprintf("invalid %s '%s'", name, raw))
	}
	return id, nil
}

// queryID parses an optional positive integer query parameter.
func queryID(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, core.Validation(fmt.Sprintf("invalid %s '%s'", name, raw))
	}
	return &id, nil
}

// queryBool returns the first present parameter among names, or def.
func queryBool(r *http.Request, def bool, names ...string) (bool, error) {
	q := r.URL.Query()
	for _, name := range names {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return false, core.Validation(fmt.Sprintf("invalid %s '%s': must be true or false", name, raw))
		}
		return v, nil
	}
	return def, nil
}

func queryAmount(r *http.Request, name string) (decimal.Decimal, error) {
	raw := r.URL.Query().Get(name)
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, core.Validation(name + " is required")
	}
	return core.ParseAmount(raw)
}
