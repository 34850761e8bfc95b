package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
)

func TestForgotSendsResetLink(t *testing.T) {
	store := newMemStore()
	hash, err := argon2id.CreateHash("password123", argon2id.DefaultParams)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	store.seedUser("Test User", "user@example.com", hash)

	email := &memEmail{}
	svc := newTestService(t, store, email)

	if err := svc.Forgot(context.Background(), "User@Example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}

	mail, ok := email.last()
	if !ok {
		t.Fatal("expected reset email to be sent")
	}
	if mail.to != "user@example.com" {
		t.Fatalf("unexpected recipient %q", mail.to)
	}
	token := store.firstResetToken()
	if token == "" {
		t.Fatal("expected reset token stored")
	}
	if !strings.Contains(mail.body, token) {
		t.Fatal("expected reset link to carry the token")
	}
}

func TestForgotUnknownEmailIsSilent(t *testing.T) {
	email := &memEmail{}
	svc := newTestService(t, newMemStore(), email)

	if err := svc.Forgot(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	if _, ok := email.last(); ok {
		t.Fatal("expected no email for unknown address")
	}
}

func TestResetUpdatesPasswordAndRevokesSessions(t *testing.T) {
	store := newMemStore()
	hash, err := argon2id.CreateHash("oldpassword", argon2id.DefaultParams)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := store.seedUser("Test User", "user@example.com", hash)

	svc := newTestService(t, store, &memEmail{})
	ctx := context.Background()

	// an active session that must be revoked by the reset
	if _, err := svc.Login(ctx, "user@example.com", "oldpassword", "ua", "127.0.0.1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Forgot(ctx, "user@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	token := store.firstResetToken()
	if token == "" {
		t.Fatal("expected reset token stored")
	}

	if err := svc.Reset(ctx, token, "newpassword123"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, err := svc.Login(ctx, "user@example.com", "oldpassword", "ua", "127.0.0.1"); err == nil {
		t.Fatal("expected old password to be rejected")
	}
	result, err := svc.Login(ctx, "user@example.com", "newpassword123", "ua", "127.0.0.1")
	if err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if result.User.ID != user.ID {
		t.Fatalf("unexpected user %q", result.User.ID)
	}

	// the token is single use
	if err := svc.Reset(ctx, token, "anotherpassword"); err == nil {
		t.Fatal("expected reused token to be rejected")
	}
}

func TestResetRejectsExpiredToken(t *testing.T) {
	store := newMemStore()
	hash, err := argon2id.CreateHash("password123", argon2id.DefaultParams)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	store.seedUser("Test User", "user@example.com", hash)

	svc := newTestService(t, store, &memEmail{})
	ctx := context.Background()

	issued := time.Now().Add(-48 * time.Hour)
	svc.WithNow(func() time.Time { return issued })
	if err := svc.Forgot(ctx, "user@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	token := store.firstResetToken()

	svc.WithNow(time.Now)
	if err := svc.Reset(ctx, token, "newpassword123"); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestResetRejectsWeakPassword(t *testing.T) {
	svc := newTestService(t, newMemStore(), &memEmail{})
	if err := svc.Reset(context.Background(), "some-token", "short"); err == nil {
		t.Fatal("expected weak password to be rejected")
	}
}
