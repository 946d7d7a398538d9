package http

import (
	"net/http"

	"ledger/internal/services"
)

func (s *Server) handleAddDebt(w http.ResponseWriter, r *http.Request) {
	accountID, err := queryID(r, "accountId")
	if err != nil {
		s.writeError(w, r, services.OpAddDebt, err)
		return
	}
	var req debtRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, services.OpAddDebt, err)
		return
	}

	res, err := s.ledger.AddDebt(r.Context(), owner(r), services.AddDebtInput{
		Person:    req.Person,
		Amount:    req.Amount.value(),
		Given:     *req.Given,
		AccountID: accountID,
	})
	if err != nil {
		s.writeError(w, r, services.OpAddDebt, err)
		return
	}
	writeJSON(w, http.StatusCreated, debtResultResponse{Debt: toDebt(res.Debt), Account: toAccountPtr(res.Account)})
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := s.ledger.ListDebts(r.Context(), owner(r))
	if err != nil {
		s.writeError(w, r, "listDebts", err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(debts, toDebt))
}

func (s *Server) handleGetDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, "getDebt", err)
		return
	}
	d, err := s.ledger.GetDebt(r.Context(), owner(r), id)
	if err != nil {
		s.writeError(w, r, "getDebt", err)
		return
	}
	writeJSON(w, http.StatusOK, toDebt(d))
}

func (s *Server) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, services.OpUpdateDebt, err)
		return
	}
	accountID, err := queryID(r, "accountId")
	if err != nil {
		s.writeError(w, r, services.OpUpdateDebt, err)
		return
	}
	var req updateDebtRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, services.OpUpdateDebt, err)
		return
	}

	res, err := s.ledger.UpdateDebt(r.Context(), owner(r), id, services.UpdateDebtInput{
		Person:    req.Person,
		Amount:    req.Amount.value(),
		Given:     *req.Given,
		AccountID: accountID,
	})
	if err != nil {
		s.writeError(w, r, services.OpUpdateDebt, err)
		return
	}
	writeJSON(w, http.StatusOK, debtResultResponse{Debt: toDebt(res.Debt), Account: toAccountPtr(res.Account)})
}

func (s *Server) handleCloseDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, services.OpCloseDebt, err)
		return
	}
	accountID, err := queryID(r, "accountId")
	if err != nil {
		s.writeError(w, r, services.OpCloseDebt, err)
		return
	}

	res, err := s.ledger.CloseDebt(r.Context(), owner(r), id, accountID)
	if err != nil {
		s.writeError(w, r, services.OpCloseDebt, err)
		return
	}
	writeJSON(w, http.StatusOK, toClosed(res))
}
