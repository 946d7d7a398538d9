package http

import (
	"net/http"

	"ledger/internal/services"
)

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, services.OpCreateBudget, err)
		return
	}
	b, err := s.ledger.CreateBudget(r.Context(), owner(r), services.BudgetInput{Name: req.Name, Amount: req.Amount.value()})
	if err != nil {
		s.writeError(w, r, services.OpCreateBudget, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBudget(b))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.ledger.ListBudgets(r.Context(), owner(r))
	if err != nil {
		s.writeError(w, r, "listBudgets", err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(budgets, toBudget))
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, "getBudget", err)
		return
	}
	b, err := s.ledger.GetBudget(r.Context(), owner(r), id)
	if err != nil {
		s.writeError(w, r, "getBudget", err)
		return
	}
	writeJSON(w, http.StatusOK, toBudget(b))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, services.OpUpdateBudget, err)
		return
	}
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, services.OpUpdateBudget, err)
		return
	}
	b, err := s.ledger.UpdateBudget(r.Context(), owner(r), id, services.BudgetInput{Name: req.Name, Amount: req.Amount.value()})
	if err != nil {
		s.writeError(w, r, services.OpUpdateBudget, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudget(b))
}

// handleCloseBudget also accepts addRemainingToAccount for the transfer flag.
func (s *Server) handleCloseBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, services.OpCloseBudget, err)
		return
	}
	transfer, err := queryBool(r, false, "transfer", "addRemainingToAccount")
	if err != nil {
		s.writeError(w, r, services.OpCloseBudget, err)
		return
	}
	accountID, err := queryID(r, "accountId")
	if err != nil {
		s.writeError(w, r, services.OpCloseBudget, err)
		return
	}

	res, err := s.ledger.CloseBudget(r.Context(), owner(r), id, transfer, accountID)
	if err != nil {
		s.writeError(w, r, services.OpCloseBudget, err)
		return
	}
	writeJSON(w, http.StatusOK, toClosed(res))
}
