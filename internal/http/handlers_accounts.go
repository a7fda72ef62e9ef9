package http

import (
	"net/http"

	"github.com/XaviGIT/budget-app/internal/core"
	"github.com/XaviGIT/budget-app/internal/services"
)

type accountPayload struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	Balance        string `json:"balance"`
	OpeningBalance string `json:"opening_balance"`
}

type accountRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Balance string `json:"balance"`
}

func toAccountPayload(a core.Account) accountPayload {
	return accountPayload{
		ID:             a.ID,
		Name:           a.Name,
		Type:           string(a.Type),
		Balance:        a.Balance.String(),
		OpeningBalance: a.OpeningBalance.String(),
	}
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.ListAccounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	payload := make([]accountPayload, 0, len(accounts))
	for _, a := range accounts {
		payload = append(payload, toAccountPayload(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": payload})
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	balance, err := parseOptionalAmount("balance", req.Balance)
	if err != nil {
		writeError(w, r, err)
		return
	}

	account, err := s.accounts.CreateAccount(r.Context(), services.AccountInput{
		Name:    req.Name,
		Type:    core.AccountType(req.Type),
		Balance: balance,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountPayload(account))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	balance, err := parseAmount("balance", req.Balance)
	if err != nil {
		writeError(w, r, err)
		return
	}

	account, err := s.accounts.UpdateAccount(r.Context(), r.PathValue("id"), services.AccountInput{
		Name:    req.Name,
		Type:    core.AccountType(req.Type),
		Balance: balance,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountPayload(account))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	err := s.accounts.DeleteAccount(r.Context(), r.PathValue("id"), r.URL.Query().Get("transfer_to"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type payeePayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	AccountID string `json:"account_id,omitempty"`
}

func (s *Server) handleListPayees(w http.ResponseWriter, r *http.Request) {
	payees, err := s.ledger.ListPayees(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	payload := make([]payeePayload, 0, len(payees))
	for _, p := range payees {
		payload = append(payload, payeePayload{
			ID:        p.ID,
			Name:      p.Name,
			Icon:      p.Icon,
			AccountID: p.AccountID,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"payees": payload})
}
