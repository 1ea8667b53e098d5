package session

import (
	"context"
	"errors"
	"testing"

	"easyaccounting/internal/core"
	"easyaccounting/internal/storage/memory"
)

func newService() (*Service, *memory.Store) {
	st := memory.New()
	st.SeedCredentials(core.Credentials{Username: "admin", Password: "secret"})
	return NewService(st, st), st
}

func TestLoginAndLookup(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	token, err := svc.Login(ctx, "admin", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	sess, err := svc.Lookup(ctx, token)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if sess.Username != "admin" || sess.CreatedAt == "" {
		t.Fatalf("session=%+v", sess)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "admin", "nope"},
		{"wrong username", "root", "secret"},
		{"both wrong", "root", "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tt.username, tt.password); !errors.Is(err, core.ErrInvalidCredentials) {
				t.Fatalf("err=%v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	name, err := svc.Check(ctx, "admin", "secret")
	if err != nil || name != "admin" {
		t.Fatalf("check: name=%q err=%v", name, err)
	}
	if _, err := svc.Check(ctx, "admin", "bad"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("err=%v, want ErrInvalidCredentials", err)
	}
}

func TestLogout(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	token, _ := svc.Login(ctx, "admin", "secret")
	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Lookup(ctx, token); !errors.Is(err, core.ErrSessionNotFound) {
		t.Fatalf("err=%v, want ErrSessionNotFound", err)
	}

	// Unknown tokens log out silently.
	if err := svc.Logout(ctx, "missing"); err != nil {
		t.Fatalf("logout unknown: %v", err)
	}
}

func TestChangeUsername(t *testing.T) {
	svc, st := newService()
	ctx := context.Background()

	token, _ := svc.Login(ctx, "admin", "secret")

	if err := svc.ChangeUsername(ctx, token, "boss", "wrong"); !errors.Is(err, core.ErrWrongPassword) {
		t.Fatalf("err=%v, want ErrWrongPassword", err)
	}
	if err := svc.ChangeUsername(ctx, "bad-token", "boss", "secret"); !errors.Is(err, core.ErrSessionNotFound) {
		t.Fatalf("err=%v, want ErrSessionNotFound", err)
	}

	if err := svc.ChangeUsername(ctx, token, "boss", "secret"); err != nil {
		t.Fatalf("change username: %v", err)
	}
	creds, _ := st.LoadCredentials(ctx)
	if creds.Username != "boss" {
		t.Fatalf("credentials=%+v", creds)
	}
	sess, err := svc.Lookup(ctx, token)
	if err != nil || sess.Username != "boss" {
		t.Fatalf("session=%+v err=%v, want live session updated", sess, err)
	}
	if _, err := svc.Login(ctx, "boss", "secret"); err != nil {
		t.Fatalf("login with new username: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	token, _ := svc.Login(ctx, "admin", "secret")

	if err := svc.ChangePassword(ctx, token, "next", "wrong"); !errors.Is(err, core.ErrWrongPassword) {
		t.Fatalf("err=%v, want ErrWrongPassword", err)
	}
	if err := svc.ChangePassword(ctx, token, "next", "secret"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := svc.Login(ctx, "admin", "secret"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("old password still accepted: %v", err)
	}
	if _, err := svc.Login(ctx, "admin", "next"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}
