// Package session implements the shared-credential login flow: opaque
// tokens mapped to a single user identity, persisted in the session store.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"easyaccounting/internal/core"
	"easyaccounting/internal/store"
)

type Service struct {
	sessions store.SessionStore
	users    store.UserStore
}

func NewService(sessions store.SessionStore, users store.UserStore) *Service {
	return &Service{sessions: sessions, users: users}
}

// Login validates the shared credentials and mints a new session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	creds, err := s.users.LoadCredentials(ctx)
	if err != nil {
		return "", fmt.Errorf("load credentials: %w", err)
	}
	if creds.Username != username || creds.Password != password {
		return "", core.ErrInvalidCredentials
	}

	sessions, err := s.sessions.LoadSessions(ctx)
	if err != nil {
		return "", fmt.Errorf("load sessions: %w", err)
	}
	token := uuid.NewString()
	sessions[token] = core.Session{
		Username:  creds.Username,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.sessions.SaveSessions(ctx, sessions); err != nil {
		return "", fmt.Errorf("save sessions: %w", err)
	}

	slog.InfoContext(ctx, "User logged in", "username", creds.Username)
	return token, nil
}

// Check validates credentials without creating a session.
func (s *Service) Check(ctx context.Context, username, password string) (string, error) {
	creds, err := s.users.LoadCredentials(ctx)
	if err != nil {
		return "", fmt.Errorf("load credentials: %w", err)
	}
	if creds.Username != username || creds.Password != password {
		return "", core.ErrInvalidCredentials
	}
	return creds.Username, nil
}

// Lookup resolves a token to its session.
func (s *Service) Lookup(ctx context.Context, token string) (core.Session, error) {
	sessions, err := s.sessions.LoadSessions(ctx)
	if err != nil {
		return core.Session{}, fmt.Errorf("load sessions: %w", err)
	}
	sess, ok := sessions[token]
	if !ok {
		return core.Session{}, core.ErrSessionNotFound
	}
	return sess, nil
}

// Logout deletes the token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	sessions, err := s.sessions.LoadSessions(ctx)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}
	if _, ok := sessions[token]; !ok {
		return nil
	}
	delete(sessions, token)
	if err := s.sessions.SaveSessions(ctx, sessions); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}
	slog.InfoContext(ctx, "User logged out")
	return nil
}

// ChangeUsername updates the shared username after verifying the current
// password, and rewrites every live session to the new name.
func (s *Service) ChangeUsername(ctx context.Context, token, newUsername, currentPassword string) error {
	if _, err := s.Lookup(ctx, token); err != nil {
		return err
	}

	creds, err := s.users.LoadCredentials(ctx)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if creds.Password != currentPassword {
		return core.ErrWrongPassword
	}

	creds.Username = newUsername
	if err := s.users.SaveCredentials(ctx, creds); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	sessions, err := s.sessions.LoadSessions(ctx)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}
	for t, sess := range sessions {
		sess.Username = newUsername
		sessions[t] = sess
	}
	if err := s.sessions.SaveSessions(ctx, sessions); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}

	slog.InfoContext(ctx, "Username changed", "username", newUsername)
	return nil
}

// ChangePassword updates the shared password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, token, newPassword, currentPassword string) error {
	if _, err := s.Lookup(ctx, token); err != nil {
		return err
	}

	creds, err := s.users.LoadCredentials(ctx)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if creds.Password != currentPassword {
		return core.ErrWrongPassword
	}

	creds.Password = newPassword
	if err := s.users.SaveCredentials(ctx, creds); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	slog.InfoContext(ctx, "Password changed")
	return nil
}
