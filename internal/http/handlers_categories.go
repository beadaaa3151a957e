package http

import (
	"net/http"
	"strings"

	"github.com/levanchungit/qlct/internal/core"
	"github.com/levanchungit/qlct/internal/storage"
)

type categoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Icon      string `json:"icon,omitempty"`
	Color     string `json:"color,omitempty"`
	ParentID  string `json:"parent_id,omitempty"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at,omitempty"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Type:      string(c.Type),
		Icon:      c.Icon.Pack(),
		Color:     c.Color,
		ParentID:  c.ParentID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := storage.CategoryFilter{Type: core.TxType(strings.TrimSpace(q.Get("type")))}
	if q.Has("parent_id") {
		parent := strings.TrimSpace(q.Get("parent_id"))
		f.ParentID = &parent
	}

	cats, err := s.directory.ListCategories(r.Context(), currentUser(r), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]categoryResponse, len(cats))
	for i, c := range cats {
		out[i] = toCategoryResponse(c)
	}
	writeJSON(w, http.StatusOK, struct {
		Categories []categoryResponse `json:"categories"`
	}{Categories: out})
}

type createCategoryRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Icon     string `json:"icon"`
	Color    string `json:"color"`
	ParentID string `json:"parent_id"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	id, err := s.directory.CreateCategory(r.Context(), currentUser(r), storage.NewCategory{
		Name:     sanitizeInput(req.Name),
		Type:     core.TxType(req.Type),
		Icon:     core.ParseIcon(req.Icon),
		Color:    sanitizeInput(req.Color),
		ParentID: req.ParentID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := s.directory.Category(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(c))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := s.directory.Category(r.Context(), currentUser(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(c))
}

type updateCategoryRequest struct {
	Name     *string `json:"name"`
	Icon     *string `json:"icon"`
	Color    *string `json:"color"`
	ParentID *string `json:"parent_id"`
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req updateCategoryRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	upd := storage.CategoryUpdate{
		Name:     req.Name,
		Color:    req.Color,
		ParentID: req.ParentID,
	}
	if req.Icon != nil {
		icon := core.ParseIcon(*req.Icon)
		upd.Icon = &icon
	}

	userID, id := currentUser(r), r.PathValue("id")
	if err := s.directory.UpdateCategory(r.Context(), userID, id, upd); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.directory.Category(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.directory.DeleteCategory(r.Context(), currentUser(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCategoryTransactions lists a category's postings, newest first.
// The literal id "uncategorized" selects postings with no category.
func (s *Server) handleCategoryTransactions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "uncategorized" {
		id = ""
	}

	txs, err := s.ledger.ListByCategory(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = toTransactionResponse(tx)
	}
	writeJSON(w, http.StatusOK, struct {
		Transactions []transactionResponse `json:"transactions"`
	}{Transactions: out})
}
