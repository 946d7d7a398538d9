package http

import (
	"net/http"

	"ledger/internal/services"
)

func (s *Server) handleCreateInvestment(w http.ResponseWriter, r *http.Request) {
	var req investmentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, services.OpCreateInvestment, err)
		return
	}

	res, err := s.ledger.CreateInvestment(r.Context(), owner(r), services.CreateInvestmentInput{
		Name:      req.Name,
		Type:      req.Type,
		Value:     req.Value.value(),
		AccountID: req.AccountID,
		BudgetID:  req.BudgetID,
	})
	if err != nil {
		s.writeError(w, r, services.OpCreateInvestment, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvestmentResult(res))
}

func (s *Server) handleListInvestments(w http.ResponseWriter, r *http.Request) {
	invs, err := s.ledger.ListInvestments(r.Context(), owner(r))
	if err != nil {
		s.writeError(w, r, "listInvestments", err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(invs, toInvestment))
}

func (s *Server) handleGetInvestment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, "getInvestment", err)
		return
	}
	inv, err := s.ledger.GetInvestment(r.Context(), owner(r), id)
	if err != nil {
		s.writeError(w, r, "getInvestment", err)
		return
	}
	writeJSON(w, http.StatusOK, toInvestment(inv))
}

func (s *Server) handleUpdateInvestment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, services.OpUpdateInvestment, err)
		return
	}
	change, err := queryAmount(r, "changeAmount")
	if err != nil {
		s.writeError(w, r, services.OpUpdateInvestment, err)
		return
	}
	accountID, err := queryID(r, "accountId")
	if err != nil {
		s.writeError(w, r, services.OpUpdateInvestment, err)
		return
	}
	budgetID, err := queryID(r, "budgetId")
	if err != nil {
		s.writeError(w, r, services.OpUpdateInvestment, err)
		return
	}

	res, err := s.ledger.UpdateInvestment(r.Context(), owner(r), id, services.UpdateInvestmentInput{
		Change:    change,
		AccountID: accountID,
		BudgetID:  budgetID,
	})
	if err != nil {
		s.writeError(w, r, services.OpUpdateInvestment, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvestmentResult(res))
}

func (s *Server) handleCloseInvestment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, services.OpCloseInvestment, err)
		return
	}
	addToAccount, err := queryBool(r, false, "addToAccount")
	if err != nil {
		s.writeError(w, r, services.OpCloseInvestment, err)
		return
	}

	res, err := s.ledger.CloseInvestment(r.Context(), owner(r), id, addToAccount)
	if err != nil {
		s.writeError(w, r, services.OpCloseInvestment, err)
		return
	}
	writeJSON(w, http.StatusOK, toClosed(res))
}

func toInvestmentResult(res services.InvestmentResult) investmentResultResponse {
	out := investmentResultResponse{
		Investment: toInvestment(res.Investment),
		Account:    toAccountPtr(res.Account),
	}
	if res.Budget != nil {
		b := toBudget(*res.Budget)
		out.Budget = &b
	}
	return out
}
