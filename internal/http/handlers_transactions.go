package http

import (
	"fmt"
	"net/http"

	"github.com/XaviGIT/budget-app/internal/core"
	"github.com/XaviGIT/budget-app/internal/services"
	"github.com/XaviGIT/budget-app/internal/storage"
)

type transactionPayload struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	AccountID    string `json:"account_id"`
	AccountName  string `json:"account_name,omitempty"`
	PayeeID      string `json:"payee_id"`
	PayeeName    string `json:"payee_name,omitempty"`
	CategoryID   string `json:"category_id,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
	Amount       string `json:"amount"`
	Memo         string `json:"memo,omitempty"`
	ToAccountID  string `json:"to_account_id,omitempty"`
}

type transactionRequest struct {
	Date       string `json:"date"`
	AccountID  string `json:"account_id"`
	PayeeID    string `json:"payee_id"`
	CategoryID string `json:"category_id"`
	Amount     string `json:"amount"`
	Memo       string `json:"memo"`
	IsIncome   bool   `json:"is_income"`
}

func toTransactionPayload(t core.Transaction) transactionPayload {
	return transactionPayload{
		ID:          t.ID,
		Date:        t.Date.String(),
		AccountID:   t.AccountID,
		PayeeID:     t.PayeeID,
		CategoryID:  t.CategoryID,
		Amount:      t.Amount.String(),
		Memo:        t.Memo,
		ToAccountID: t.ToAccountID,
	}
}

func toDetailPayload(d storage.TransactionDetail) transactionPayload {
	p := toTransactionPayload(d.Transaction)
	p.AccountName = d.AccountName
	p.PayeeName = d.PayeeName
	p.CategoryName = d.CategoryName
	return p
}

func (req transactionRequest) toInput() (services.TransactionInput, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return services.TransactionInput{}, err
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return services.TransactionInput{}, err
	}
	if amount.Cents < 0 {
		return services.TransactionInput{}, fmt.Errorf("amount must be positive: %w", core.ErrInvalidArgument)
	}
	return services.TransactionInput{
		Date:       date,
		AccountID:  req.AccountID,
		PayeeID:    req.PayeeID,
		CategoryID: req.CategoryID,
		Amount:     amount,
		Memo:       req.Memo,
		IsIncome:   req.IsIncome,
	}, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	details, err := s.ledger.ListTransactions(r.Context(), r.URL.Query().Get("account"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	payload := make([]transactionPayload, 0, len(details))
	for _, d := range details {
		payload = append(payload, toDetailPayload(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": payload})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.ledger.CreateTransaction(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionPayload(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.ledger.UpdateTransaction(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionPayload(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
