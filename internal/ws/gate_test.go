package ws

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/diarylab/backend/internal/auth"
	"github.com/diarylab/backend/internal/config"
)

func newGate(t *testing.T, ttl time.Duration) (*Gate, *auth.TokenService) {
	t.Helper()
	tokens := auth.NewTokenService(config.AuthConfig{Secret: "gate-test-secret-0123456789", TTL: ttl})
	return NewGate(tokens), tokens
}

func TestGateAdmitsBearerHeader(t *testing.T) {
	gate, tokens := newGate(t, time.Hour)
	token, err := tokens.Issue("alice")
	if err != nil {
		t.Fatalf("Issue err: %v", err)
	}

	req := httptest.NewRequest("GET", "/ws/ai-chat", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	identity, gotToken, err := gate.Admit(req)
	if err != nil {
		t.Fatalf("Admit err: %v", err)
	}
	if identity != "alice" || gotToken != token {
		t.Fatalf("unexpected admission: identity=%q token=%q", identity, gotToken)
	}
}

func TestGateAdmitsQueryParam(t *testing.T) {
	gate, tokens := newGate(t, time.Hour)
	token, _ := tokens.Issue("alice")

	req := httptest.NewRequest("GET", "/ws/ai-chat?token="+token, nil)

	identity, _, err := gate.Admit(req)
	if err != nil {
		t.Fatalf("Admit err: %v", err)
	}
	if identity != "alice" {
		t.Fatalf("unexpected identity %q", identity)
	}
}

func TestGateRejectsMissingToken(t *testing.T) {
	gate, _ := newGate(t, time.Hour)

	req := httptest.NewRequest("GET", "/ws/ai-chat", nil)
	if _, _, err := gate.Admit(req); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestGateRejectsTamperedToken(t *testing.T) {
	gate, tokens := newGate(t, time.Hour)
	token, _ := tokens.Issue("alice")

	req := httptest.NewRequest("GET", "/ws/ai-chat", nil)
	req.Header.Set("Authorization", "Bearer "+token+"x")

	if _, _, err := gate.Admit(req); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestGateRejectsExpiredToken(t *testing.T) {
	gate, tokens := newGate(t, -time.Minute)
	token, _ := tokens.Issue("alice")

	req := httptest.NewRequest("GET", "/ws/ai-chat?token="+token, nil)
	if _, _, err := gate.Admit(req); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
