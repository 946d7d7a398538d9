package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"ledger/internal/core"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Custom", "value").
		Payload(map[string]int{"id": 3}).
		Write(w)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "value", w.Header().Get("X-Custom"))
	assert.JSONEq(t, `{"id":3}`, w.Body.String())
}

func TestJSONResponseBuilder_NoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NoContent().Write(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestJSONResponseBuilder_UnencodablePayload(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Payload(make(chan int)).Write(w)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), genericErrorMessage)
}

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(http.StatusForbidden, "debt 4 does not belong to user").Write(w)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Forbidden","message":"debt 4 does not belong to user"}`, w.Body.String())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", core.NotFound(core.KindAccount, 9), http.StatusNotFound, "account 9 not found"},
		{"ownership", core.Ownership(core.KindBudget, 2), http.StatusForbidden, "budget 2 does not belong to user"},
		{"validation", core.Validation("person is required"), http.StatusBadRequest, "person is required"},
		{"conflict", core.Conflict("busy"), http.StatusConflict, "busy"},
		{"wrapped business", fmt.Errorf("ledger: %w", core.NotFound(core.KindDebt, 1)), http.StatusNotFound, "debt 1 not found"},
		{"internal", errors.New("sql: database is closed"), http.StatusInternalServerError, genericErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := statusFor(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}
