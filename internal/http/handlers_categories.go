package http

import (
	"net/http"

	"github.com/XaviGIT/budget-app/internal/core"
	"github.com/XaviGIT/budget-app/internal/services"
)

type categoryPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon,omitempty"`
	GroupID   string `json:"group_id"`
	SortOrder int    `json:"sort_order"`
}

type categoryRequest struct {
	Name    string `json:"name"`
	Icon    string `json:"icon"`
	GroupID string `json:"group_id"`
}

func toCategoryPayload(c core.Category) categoryPayload {
	return categoryPayload{
		ID:        c.ID,
		Name:      c.Name,
		Icon:      c.Icon,
		GroupID:   c.GroupID,
		SortOrder: c.SortOrder,
	}
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.categories.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	payload := make([]categoryPayload, 0, len(categories))
	for _, c := range categories {
		payload = append(payload, toCategoryPayload(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": payload})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	category, err := s.categories.CreateCategory(r.Context(), services.CategoryInput{
		Name:    req.Name,
		Icon:    req.Icon,
		GroupID: req.GroupID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryPayload(category))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	category, err := s.categories.UpdateCategory(r.Context(), r.PathValue("id"), services.CategoryInput{
		Name:    req.Name,
		Icon:    req.Icon,
		GroupID: req.GroupID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryPayload(category))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.categories.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type groupPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

type groupRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListCategoryGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.categories.ListCategoryGroups(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	payload := make([]groupPayload, 0, len(groups))
	for _, g := range groups {
		payload = append(payload, groupPayload{ID: g.ID, Name: g.Name, SortOrder: g.SortOrder})
	}
	writeJSON(w, http.StatusOK, map[string]any{"category_groups": payload})
}

func (s *Server) handleCreateCategoryGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	group, err := s.categories.CreateCategoryGroup(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, groupPayload{ID: group.ID, Name: group.Name, SortOrder: group.SortOrder})
}

func (s *Server) handleUpdateCategoryGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	group, err := s.categories.UpdateCategoryGroup(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groupPayload{ID: group.ID, Name: group.Name, SortOrder: group.SortOrder})
}

func (s *Server) handleDeleteCategoryGroup(w http.ResponseWriter, r *http.Request) {
	err := s.categories.DeleteCategoryGroup(r.Context(), r.PathValue("id"), r.URL.Query().Get("transfer_to"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
