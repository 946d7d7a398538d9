package http

import (
	"net/http"

	"ledger/internal/services"
)

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, services.OpCreateAccount, err)
		return
	}

	acc, err := s.ledger.CreateAccount(r.Context(), owner(r), services.CreateAccountInput{
		Name:           req.AccountName,
		Type:           req.Type,
		InitialBalance: req.Balance.ptr(),
	})
	if err != nil {
		s.writeError(w, r, services.OpCreateAccount, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccount(acc))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accs, err := s.ledger.ListAccounts(r.Context(), owner(r))
	if err != nil {
		s.writeError(w, r, "listAccounts", err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(accs, toAccount))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, "getAccount", err)
		return
	}
	acc, err := s.ledger.GetAccount(r.Context(), owner(r), id)
	if err != nil {
		s.writeError(w, r, "getAccount", err)
		return
	}
	writeJSON(w, http.StatusOK, toAccount(acc))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, services.OpUpdateAccount, err)
		return
	}
	var req updateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, services.OpUpdateAccount, err)
		return
	}

	acc, err := s.ledger.UpdateAccount(r.Context(), owner(r), id, services.UpdateAccountInput{
		Name:    req.AccountName,
		Type:    req.Type,
		Balance: req.Balance.value(),
	})
	if err != nil {
		s.writeError(w, r, services.OpUpdateAccount, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccount(acc))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, services.OpDeleteAccount, err)
		return
	}
	if err := s.ledger.DeleteAccount(r.Context(), owner(r), id); err != nil {
		s.writeError(w, r, services.OpDeleteAccount, err)
		return
	}
	NoContent().Write(w)
}
