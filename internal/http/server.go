// Package http exposes the JSON API consumed by the easyaccounting frontend:
// CSV upload and classification, stored batch management, taxonomy editing,
// pivot aggregation and session auth.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"

	"easyaccounting/internal/classify"
	"easyaccounting/internal/config"
	"easyaccounting/internal/records"
	"easyaccounting/internal/session"
	"easyaccounting/internal/store"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

type Server struct {
	http.Server

	classifier *classify.Service
	records    *records.Service
	sessions   *session.Service

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer wires the services onto the router and returns a ready-to-run
// server. All persistence goes through the injected backend.
func NewServer(cfg *config.Config, st store.Backend) *Server {
	mux := http.NewServeMux()

	s := &Server{
		classifier:  classify.NewService(st),
		records:     records.NewService(st),
		sessions:    session.NewService(st, st),
		rateLimiter: newRateLimiter(cfg.RateLimitPerMinute),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /uploadcsv", s.withCommon(s.handleUploadCSV))
	mux.HandleFunc("GET /stored-files", s.withCommon(s.handleStoredFiles))
	mux.HandleFunc("GET /file-data/{id}", s.withCommon(s.handleFileData))
	mux.HandleFunc("DELETE /file/{id}", s.withCommon(s.handleDeleteFile))
	mux.HandleFunc("GET /debug-stored", s.withCommon(s.handleDebugStored))

	mux.HandleFunc("POST /create-folder", s.withCommon(s.handleCreateFolder))
	mux.HandleFunc("POST /rename-file", s.withCommon(s.handleRenameFile))
	mux.HandleFunc("POST /move-file", s.withCommon(s.handleMoveFile))
	mux.HandleFunc("DELETE /folder/{id}", s.withCommon(s.handleDeleteFolder))

	mux.HandleFunc("POST /reclassify", s.withCommon(s.handleReclassify))
	mux.HandleFunc("POST /addnewvalue", s.withCommon(s.handleAddKeyword))
	mux.HandleFunc("POST /addnewclassification", s.withCommon(s.handleAddCategory))
	mux.HandleFunc("GET /expense-options", s.withCommon(s.handleExpenseOptions))
	mux.HandleFunc("GET /income-options", s.withCommon(s.handleIncomeOptions))
	mux.HandleFunc("POST /pivot-table", s.withCommon(s.handlePivotTable))

	mux.HandleFunc("POST /api/auth/login", s.withCommon(s.handleLogin))
	mux.HandleFunc("POST /api/auth/check", s.withCommon(s.handleCheck))
	mux.HandleFunc("GET /api/auth/me", s.withCommon(s.handleMe))
	mux.HandleFunc("POST /api/auth/logout", s.withCommon(s.handleLogout))
	mux.HandleFunc("POST /api/auth/change-username", s.withCommon(s.handleChangeUsername))
	mux.HandleFunc("POST /api/auth/change-password", s.withCommon(s.handleChangePassword))

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	s.Server = http.Server{
		Addr:    ":" + cfg.Port,
		Handler: c.Handler(mux),
	}
	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withCommon adds security headers, rate limiting and request logging.
func (s *Server) withCommon(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
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

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Rate limiting applies to mutating requests only
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
