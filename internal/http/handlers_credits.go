package http

import (
	"net/http"

	"ledger/internal/services"
)

func (s *Server) handleAddCredit(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "accountId")
	if err != nil {
		s.writeError(w, r, services.OpAddCredit, err)
		return
	}
	var req creditRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, services.OpAddCredit, err)
		return
	}

	res, err := s.ledger.AddCredit(r.Context(), owner(r), services.AddCreditInput{
		AccountID: accountID,
		Source:    req.Source,
		Amount:    req.Amount.value(),
		Note:      req.Note,
		RepayDebt: req.RepayDebt,
	})
	if err != nil {
		s.writeError(w, r, services.OpAddCredit, err)
		return
	}

	out := addCreditResponse{
		Credit:      toCredit(res.Credit),
		Account:     toAccount(res.Account),
		DebtDeleted: res.DebtDeleted,
	}
	if res.Debt != nil {
		d := toDebt(*res.Debt)
		out.Debt = &d
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleListCredits(w http.ResponseWriter, r *http.Request) {
	credits, err := s.ledger.ListCredits(r.Context(), owner(r))
	if err != nil {
		s.writeError(w, r, "listCredits", err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(credits, toCredit))
}

func (s *Server) handleGetCredit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, "getCredit", err)
		return
	}
	c, err := s.ledger.GetCredit(r.Context(), owner(r), id)
	if err != nil {
		s.writeError(w, r, "getCredit", err)
		return
	}
	writeJSON(w, http.StatusOK, toCredit(c))
}

func (s *Server) handleDeleteCredit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, services.OpDeleteCredit, err)
		return
	}
	if err := s.ledger.DeleteCredit(r.Context(), owner(r), id); err != nil {
		s.writeError(w, r, services.OpDeleteCredit, err)
		return
	}
	NoContent().Write(w)
}
