package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/levanchungit/qlct/internal/core"
	"github.com/levanchungit/qlct/internal/period"
)

// errorBody is the JSON error envelope. Code carries the machine-readable
// policy code when there is one (DEFAULT_ACCOUNT, LAST_ACCOUNT).
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func readJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// writeError maps domain errors onto HTTP statuses. Validation failures are
// 400, deletion policy refusals 409, unknown ids 404. Anything unmapped is
// a 500 with the detail kept out of the response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrMissingAccount),
		errors.Is(err, core.ErrInvalidTimestamp),
		errors.Is(err, core.ErrUsernameTooShort),
		errors.Is(err, core.ErrPasswordTooShort):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, core.ErrDefaultAccount):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error(), Code: "DEFAULT_ACCOUNT"})
	case errors.Is(err, core.ErrLastAccount):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error(), Code: "LAST_ACCOUNT"})
	case errors.Is(err, core.ErrUsernameTaken):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, core.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "url", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// parsePeriod reads the period query parameters. Defaults to the month
// containing today. Custom periods require explicit start and end dates.
func parsePeriod(r *http.Request) (period.Kind, time.Time, time.Time, time.Time, error) {
	q := r.URL.Query()

	kind := period.Kind(strings.TrimSpace(q.Get("period")))
	if kind == "" {
		kind = period.Month
	}
	if !kind.Valid() {
		return "", time.Time{}, time.Time{}, time.Time{}, fmt.Errorf("unknown period %q", kind)
	}

	anchor := time.Now()
	if v := strings.TrimSpace(q.Get("anchor")); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return "", time.Time{}, time.Time{}, time.Time{}, fmt.Errorf("invalid anchor date %q", v)
		}
		anchor = t
	}

	var start, end time.Time
	if kind == period.Custom {
		s, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(q.Get("start")), time.Local)
		if err != nil {
			return "", time.Time{}, time.Time{}, time.Time{}, fmt.Errorf("custom period requires a valid start date")
		}
		e, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(q.Get("end")), time.Local)
		if err != nil {
			return "", time.Time{}, time.Time{}, time.Time{}, fmt.Errorf("custom period requires a valid end date")
		}
		start, end = s, e
	}
	return kind, anchor, start, end, nil
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
