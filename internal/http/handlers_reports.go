package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/levanchungit/qlct/internal/core"
	"github.com/levanchungit/qlct/internal/period"
	"github.com/levanchungit/qlct/internal/services"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
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

	sum, err := s.reports.Summary(r.Context(), currentUser(r), rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Start int64 `json:"start"`
		End   int64 `json:"end"`
		services.Summary
	}{Start: rng.StartSec(), End: rng.EndSec(), Summary: sum})
}

type breakdownEntryResponse struct {
	CategoryID string  `json:"category_id,omitempty"`
	Name       string  `json:"name,omitempty"`
	Icon       string  `json:"icon,omitempty"`
	Color      string  `json:"color,omitempty"`
	Total      int64   `json:"total"`
	Percent    float64 `json:"percent"`
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
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

	typ := core.TxType(strings.TrimSpace(r.URL.Query().Get("type")))
	if typ == "" {
		typ = core.Expense
	}
	if !typ.Postable() {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: core.ErrInvalidType.Error()})
		return
	}

	entries, err := s.reports.Breakdown(r.Context(), currentUser(r), rng, typ)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]breakdownEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = breakdownEntryResponse{
			CategoryID: e.CategoryID,
			Name:       e.Name,
			Icon:       e.Icon.Pack(),
			Color:      e.Color,
			Total:      e.Total,
			Percent:    e.Percent,
		}
	}
	writeJSON(w, http.StatusOK, struct {
		Start     int64                    `json:"start"`
		End       int64                    `json:"end"`
		Type      string                   `json:"type"`
		Breakdown []breakdownEntryResponse `json:"breakdown"`
	}{Start: rng.StartSec(), End: rng.EndSec(), Type: string(typ), Breakdown: out})
}

// handleNavigate steps the anchor one period backward or forward. Stepping
// forward past the period containing the current time is refused.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	kind, anchor, _, _, err := parsePeriod(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if kind == period.Custom {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "custom periods cannot be navigated"})
		return
	}

	dir := strings.TrimSpace(r.URL.Query().Get("direction"))
	var next time.Time
	switch dir {
	case "prev":
		next = period.Prev(kind, anchor)
	case "next":
		var ok bool
		next, ok = period.Next(kind, anchor, time.Now())
		if !ok {
			writeJSON(w, http.StatusConflict, errorBody{
				Error: "cannot navigate past the current period", Code: "AT_PRESENT",
			})
			return
		}
	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "direction must be prev or next"})
		return
	}

	rng := period.For(kind, next)
	writeJSON(w, http.StatusOK, struct {
		Anchor string `json:"anchor"`
		Start  int64  `json:"start"`
		End    int64  `json:"end"`
	}{Anchor: next.Format("2006-01-02"), Start: rng.StartSec(), End: rng.EndSec()})
}
