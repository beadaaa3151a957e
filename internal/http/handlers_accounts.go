package http

import (
	"net/http"

	"github.com/levanchungit/qlct/internal/core"
	"github.com/levanchungit/qlct/internal/storage"
)

type accountResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Icon           string `json:"icon,omitempty"`
	Color          string `json:"color,omitempty"`
	CurrencyCode   string `json:"currency_code"`
	IncludeInTotal bool   `json:"include_in_total"`
	Balance        int64  `json:"balance"`
	CreatedAt      int64  `json:"created_at"`
	UpdatedAt      int64  `json:"updated_at,omitempty"`
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Icon:           a.Icon.Pack(),
		Color:          a.Color,
		CurrencyCode:   a.CurrencyCode,
		IncludeInTotal: a.IncludeInTotal,
		Balance:        a.BalanceCached,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

type createAccountRequest struct {
	Name           string `json:"name"`
	Icon           string `json:"icon"`
	Color          string `json:"color"`
	CurrencyCode   string `json:"currency_code"`
	IncludeInTotal *bool  `json:"include_in_total"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.directory.ListAccounts(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]accountResponse, len(accounts))
	var total int64
	for i, a := range accounts {
		out[i] = toAccountResponse(a)
		if a.IncludeInTotal {
			total += a.BalanceCached
		}
	}
	writeJSON(w, http.StatusOK, struct {
		Accounts []accountResponse `json:"accounts"`
		Total    int64             `json:"total"`
	}{Accounts: out, Total: total})
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	include := true
	if req.IncludeInTotal != nil {
		include = *req.IncludeInTotal
	}
	id, err := s.directory.CreateAccount(r.Context(), currentUser(r), storage.NewAccount{
		Name:           sanitizeInput(req.Name),
		Icon:           core.ParseIcon(req.Icon),
		Color:          sanitizeInput(req.Color),
		CurrencyCode:   sanitizeInput(req.CurrencyCode),
		IncludeInTotal: include,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	a, err := s.directory.Account(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(a))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.directory.Account(r.Context(), currentUser(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(a))
}

type updateAccountRequest struct {
	Name           *string `json:"name"`
	Icon           *string `json:"icon"`
	Color          *string `json:"color"`
	CurrencyCode   *string `json:"currency_code"`
	IncludeInTotal *bool   `json:"include_in_total"`
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	upd := storage.AccountUpdate{
		Name:           req.Name,
		Color:          req.Color,
		CurrencyCode:   req.CurrencyCode,
		IncludeInTotal: req.IncludeInTotal,
	}
	if req.Icon != nil {
		icon := core.ParseIcon(*req.Icon)
		upd.Icon = &icon
	}

	userID, id := currentUser(r), r.PathValue("id")
	if err := s.directory.UpdateAccount(r.Context(), userID, id, upd); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := s.directory.Account(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(a))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.directory.DeleteAccount(r.Context(), currentUser(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
