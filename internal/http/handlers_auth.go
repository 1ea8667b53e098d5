package http

import (
	"errors"
	"log/slog"
	"net/http"

	"easyaccounting/internal/core"
)

type loginRequest struct {
	EnteredName     string `json:"entered_name"`
	EnteredPassword string `json:"entered_password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	token, err := s.sessions.Login(r.Context(), req.EnteredName, req.EnteredPassword)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": false, "message": "Invalid credentials"})
			return
		}
		slog.ErrorContext(r.Context(), "Login failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failed"})
		return
	}

	sess, err := s.sessions.Lookup(r.Context(), token)
	if err != nil {
		slog.ErrorContext(r.Context(), "Session lookup after login failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"token": token,
		"user":  map[string]string{"name": sess.Username},
	})
}

// handleCheck validates credentials without minting a session. Kept for the
// pre-token frontend flow.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	username, err := s.sessions.Check(r.Context(), req.EnteredName, req.EnteredPassword)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": false})
			return
		}
		slog.ErrorContext(r.Context(), "Credential check failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"user": map[string]string{"name": username},
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
		return
	}

	sess, err := s.sessions.Lookup(r.Context(), token)
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid session"})
			return
		}
		slog.ErrorContext(r.Context(), "Session lookup failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"user": map[string]string{"name": sess.Username},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token, ok := bearerToken(r); ok {
		if err := s.sessions.Logout(r.Context(), token); err != nil {
			slog.ErrorContext(r.Context(), "Logout failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failed"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Logged out successfully"})
}

func (s *Server) handleChangeUsername(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
		return
	}

	var req struct {
		NewUsername     string `json:"new_username"`
		CurrentPassword string `json:"current_password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	if err := s.sessions.ChangeUsername(r.Context(), token, sanitizeInput(req.NewUsername), req.CurrentPassword); err != nil {
		s.writeAuthError(w, r, err, "Username change failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"message": "Username updated successfully",
		"user":    map[string]string{"name": sanitizeInput(req.NewUsername)},
	})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
		return
	}

	var req struct {
		NewPassword     string `json:"new_password"`
		CurrentPassword string `json:"current_password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	if err := s.sessions.ChangePassword(r.Context(), token, req.NewPassword, req.CurrentPassword); err != nil {
		s.writeAuthError(w, r, err, "Password change failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"message": "Password updated successfully",
	})
}

func (s *Server) writeAuthError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid session"})
	case errors.Is(err, core.ErrWrongPassword):
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Incorrect password"})
	default:
		slog.ErrorContext(r.Context(), msg, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failed"})
	}
}
