package http

import (
	"net/http"

	"github.com/XaviGIT/budget-app/internal/core"
	"github.com/XaviGIT/budget-app/internal/services"
)

type budgetCategoryPayload struct {
	categoryPayload
	Assigned string `json:"assigned"`
	Spent    string `json:"spent"`
}

type budgetGroupPayload struct {
	groupPayload
	Categories []budgetCategoryPayload `json:"categories"`
}

type budgetMonthPayload struct {
	Month          string               `json:"month"`
	Groups         []budgetGroupPayload `json:"groups"`
	TotalAssigned  string               `json:"total_assigned"`
	TotalSpent     string               `json:"total_spent"`
	AvailableFunds string               `json:"available_funds"`
}

type assignRequest struct {
	CategoryID  string `json:"category_id"`
	Policy      string `json:"policy"`
	Amount      string `json:"amount"`
	Target      string `json:"target"`
	TargetMonth string `json:"target_month"`
}

type reorderRequest struct {
	Groups     map[string]int `json:"groups"`
	Categories map[string]int `json:"categories"`
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	month, err := core.ParseMonth(r.PathValue("month"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	model, err := s.budget.GetBudget(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	funds, err := s.budget.AvailableFunds(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	payload := budgetMonthPayload{
		Month:          month.String(),
		Groups:         make([]budgetGroupPayload, 0, len(model.Groups)),
		TotalAssigned:  model.TotalAssigned.String(),
		TotalSpent:     model.TotalSpent.String(),
		AvailableFunds: funds.String(),
	}
	for _, g := range model.Groups {
		group := budgetGroupPayload{
			groupPayload: groupPayload{ID: g.Group.ID, Name: g.Group.Name, SortOrder: g.Group.SortOrder},
			Categories:   make([]budgetCategoryPayload, 0, len(g.Categories)),
		}
		for _, c := range g.Categories {
			group.Categories = append(group.Categories, budgetCategoryPayload{
				categoryPayload: toCategoryPayload(c.Category),
				Assigned:        c.Assigned.String(),
				Spent:           c.Spent.String(),
			})
		}
		payload.Groups = append(payload.Groups, group)
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleAssignBudget(w http.ResponseWriter, r *http.Request) {
	month, err := core.ParseMonth(r.PathValue("month"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req assignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := services.AssignInput{Policy: core.BudgetPolicy(req.Policy)}
	if in.Amount, err = parseOptionalAmount("amount", req.Amount); err != nil {
		writeError(w, r, err)
		return
	}
	if in.Target, err = parseOptionalAmount("target", req.Target); err != nil {
		writeError(w, r, err)
		return
	}
	if req.TargetMonth != "" {
		if in.TargetMonth, err = core.ParseMonth(req.TargetMonth); err != nil {
			writeError(w, r, err)
			return
		}
	}

	if err := s.budget.Assign(r.Context(), month, req.CategoryID, in); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.categories.Reorder(r.Context(), req.Groups, req.Categories); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
