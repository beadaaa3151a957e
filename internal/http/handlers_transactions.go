package http

import (
	"net/http"

	"github.com/levanchungit/qlct/internal/core"
)

type transactionResponse struct {
	ID         string `json:"id"`
	AccountID  string `json:"account_id"`
	CategoryID string `json:"category_id,omitempty"`
	Type       string `json:"type"`
	Amount     int64  `json:"amount"`
	Note       string `json:"note,omitempty"`
	OccurredAt int64  `json:"occurred_at"`
	CreatedAt  int64  `json:"created_at"`
	UpdatedAt  int64  `json:"updated_at,omitempty"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:         tx.ID,
		AccountID:  tx.AccountID,
		CategoryID: tx.CategoryID,
		Type:       string(tx.Type),
		Amount:     tx.Amount,
		Note:       tx.Note,
		OccurredAt: tx.OccurredAt,
		CreatedAt:  tx.CreatedAt,
		UpdatedAt:  tx.UpdatedAt,
	}
}

type postingRequest struct {
	AccountID  string `json:"account_id"`
	CategoryID string `json:"category_id"`
	Type       string `json:"type"`
	Amount     int64  `json:"amount"`
	Note       string `json:"note"`
	OccurredAt int64  `json:"occurred_at"`
}

func (p postingRequest) toPosting(userID string) core.Posting {
	return core.Posting{
		UserID:     userID,
		AccountID:  p.AccountID,
		CategoryID: p.CategoryID,
		Type:       core.TxType(p.Type),
		Amount:     p.Amount,
		Note:       sanitizeInput(p.Note),
		OccurredAt: p.OccurredAt,
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req postingRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	userID := currentUser(r)
	id, err := s.ledger.Post(r.Context(), req.toPosting(userID))
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.ledger.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.ledger.Get(r.Context(), currentUser(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req postingRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	userID, id := currentUser(r), r.PathValue("id")
	if err := s.ledger.Update(r.Context(), userID, id, req.toPosting(userID)); err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := s.ledger.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Delete(r.Context(), currentUser(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transactionDetailResponse struct {
	transactionResponse
	AccountName  string `json:"account_name"`
	CategoryName string `json:"category_name,omitempty"`
	CategoryIcon string `json:"category_icon,omitempty"`
}

// handleListTransactions lists the postings of a period, newest first, with
// account and category names joined in.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	kind, anchor, customStart, customEnd, err := parsePeriod(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	rng, err := s.reports.Resolve(kind, anchor, customStart, customEnd)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	details, err := s.reports.Transactions(r.Context(), currentUser(r), rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]transactionDetailResponse, len(details))
	for i, d := range details {
		out[i] = transactionDetailResponse{
			transactionResponse: toTransactionResponse(d.Transaction),
			AccountName:         d.AccountName,
			CategoryName:        d.CategoryName,
			CategoryIcon:        d.CategoryIcon.Pack(),
		}
	}
	writeJSON(w, http.StatusOK, struct {
		Start        int64                       `json:"start"`
		End          int64                       `json:"end"`
		Transactions []transactionDetailResponse `json:"transactions"`
	}{Start: rng.StartSec(), End: rng.EndSec(), Transactions: out})
}
