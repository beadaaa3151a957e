// Package http exposes the JSON API: auth, the account and category
// directory, ledger mutations and period reports. Handlers translate HTTP
// into service calls; all policy lives below this layer.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/levanchungit/qlct/internal/auth"
	"github.com/levanchungit/qlct/internal/services"
)

type Server struct {
	http.Server

	authSvc   *auth.Service
	sessions  *auth.SessionStore
	ledger    *services.LedgerService
	directory *services.DirectoryService
	reports   *services.ReportService

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

type ctxKey int

const userIDKey ctxKey = 1

// NewServer wires the routes. Everything under /api except the auth
// endpoints requires a logged-in session.
func NewServer(addr string, authSvc *auth.Service, sessions *auth.SessionStore,
	ledger *services.LedgerService, directory *services.DirectoryService,
	reports *services.ReportService) *Server {

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		authSvc:     authSvc,
		sessions:    sessions,
		ledger:      ledger,
		directory:   directory,
		reports:     reports,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/register", s.withSecurity(s.handleRegister))
	mux.HandleFunc("POST /api/login", s.withSecurity(s.handleLogin))
	mux.HandleFunc("POST /api/logout", s.withSecurity(s.handleLogout))
	mux.HandleFunc("GET /api/me", s.withSecurity(s.requireUser(s.handleMe)))

	mux.HandleFunc("GET /api/accounts", s.withSecurity(s.requireUser(s.handleListAccounts)))
	mux.HandleFunc("POST /api/accounts", s.withSecurity(s.requireUser(s.handleCreateAccount)))
	mux.HandleFunc("GET /api/accounts/{id}", s.withSecurity(s.requireUser(s.handleGetAccount)))
	mux.HandleFunc("PATCH /api/accounts/{id}", s.withSecurity(s.requireUser(s.handleUpdateAccount)))
	mux.HandleFunc("DELETE /api/accounts/{id}", s.withSecurity(s.requireUser(s.handleDeleteAccount)))

	mux.HandleFunc("GET /api/categories", s.withSecurity(s.requireUser(s.handleListCategories)))
	mux.HandleFunc("POST /api/categories", s.withSecurity(s.requireUser(s.handleCreateCategory)))
	mux.HandleFunc("GET /api/categories/{id}", s.withSecurity(s.requireUser(s.handleGetCategory)))
	mux.HandleFunc("PATCH /api/categories/{id}", s.withSecurity(s.requireUser(s.handleUpdateCategory)))
	mux.HandleFunc("DELETE /api/categories/{id}", s.withSecurity(s.requireUser(s.handleDeleteCategory)))
	mux.HandleFunc("GET /api/categories/{id}/transactions", s.withSecurity(s.requireUser(s.handleCategoryTransactions)))

	mux.HandleFunc("GET /api/transactions", s.withSecurity(s.requireUser(s.handleListTransactions)))
	mux.HandleFunc("POST /api/transactions", s.withSecurity(s.requireUser(s.handleCreateTransaction)))
	mux.HandleFunc("GET /api/transactions/{id}", s.withSecurity(s.requireUser(s.handleGetTransaction)))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withSecurity(s.requireUser(s.handleUpdateTransaction)))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withSecurity(s.requireUser(s.handleDeleteTransaction)))

	mux.HandleFunc("GET /api/reports/summary", s.withSecurity(s.requireUser(s.handleSummary)))
	mux.HandleFunc("GET /api/reports/breakdown", s.withSecurity(s.requireUser(s.handleBreakdown)))
	mux.HandleFunc("GET /api/reports/navigate", s.withSecurity(s.requireUser(s.handleNavigate)))

	return s
}

// withSecurity adds security headers, rate limiting on writes and request
// logging.
func (s *Server) withSecurity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

const requestIDKey ctxKey = 2

// requireUser resolves the current session and stashes the user id in the
// request context.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok, err := s.sessions.Load()
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "not logged in"})
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, sess.UserID)))
	}
}

func currentUser(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// responseWriter captures the status code for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the server and its background cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
