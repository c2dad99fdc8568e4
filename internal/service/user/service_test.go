package user_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/diarylab/backend/internal/auth"
	"github.com/diarylab/backend/internal/config"
	usermodel "github.com/diarylab/backend/internal/model/user"
	userservice "github.com/diarylab/backend/internal/service/user"
	"github.com/diarylab/backend/internal/store"
)

func newService(t *testing.T) *userservice.Service {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	tokens := auth.NewTokenService(config.AuthConfig{Secret: "test-secret-0123456789", TTL: time.Hour})
	return userservice.NewService(st, tokens, zerolog.Nop())
}

func TestLoginProvisionsUnknownUser(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, usermodel.LoginRequest{Username: "alice", Password: "pw1"})
	if err != nil {
		t.Fatalf("Login err: %v", err)
	}
	if resp.Token == "" || resp.Type != "Bearer" {
		t.Fatalf("unexpected login response: %+v", resp)
	}
	if resp.Username != "alice" || resp.Role != usermodel.RoleUser {
		t.Fatalf("unexpected identity in response: %+v", resp)
	}

	// Second login with the same credentials hits the stored account.
	again, err := svc.Login(ctx, usermodel.LoginRequest{Username: "alice", Password: "pw1"})
	if err != nil {
		t.Fatalf("repeat Login err: %v", err)
	}
	if again.ID != resp.ID {
		t.Fatalf("expected same account, got %d and %d", resp.ID, again.ID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.Login(ctx, usermodel.LoginRequest{Username: "alice", Password: "pw1"}); err != nil {
		t.Fatalf("Login err: %v", err)
	}

	_, err := svc.Login(ctx, usermodel.LoginRequest{Username: "alice", Password: "nope"})
	if !errors.Is(err, userservice.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginEmptyCredentials(t *testing.T) {
	svc := newService(t)

	_, err := svc.Login(context.Background(), usermodel.LoginRequest{})
	if !errors.Is(err, userservice.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
