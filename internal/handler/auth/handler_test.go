package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	authpkg "github.com/diarylab/backend/internal/auth"
	"github.com/diarylab/backend/internal/config"
	"github.com/diarylab/backend/internal/middleware"
	"github.com/diarylab/backend/internal/model/user"
	userservice "github.com/diarylab/backend/internal/service/user"
	"github.com/diarylab/backend/internal/store"
)

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()

	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	tokens := authpkg.NewTokenService(config.AuthConfig{Secret: "auth-test-secret", TTL: time.Hour})
	users := userservice.NewService(st, tokens, zerolog.Nop())
	handler := New(users)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	r.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth(tokens, users))
		handler.RegisterProtectedRoutes(protected)
	})
	return r
}

func signIn(t *testing.T, r *chi.Mux, username, password string) *httptest.ResponseRecorder {
	t.Helper()

	payload, _ := json.Marshal(user.LoginRequest{Username: username, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestSigninProvisionsNewAccount(t *testing.T) {
	r := setupRouter(t)

	resp := signIn(t, r, "alice", "secret")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var login user.LoginResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if login.Token == "" {
		t.Fatal("expected a session token")
	}
	if login.Type != "Bearer" {
		t.Fatalf("expected token type Bearer, got %q", login.Type)
	}
	if login.Username != "alice" || login.Role != user.RoleUser {
		t.Fatalf("unexpected identity: %+v", login)
	}
}

func TestSigninRejectsWrongPassword(t *testing.T) {
	r := setupRouter(t)

	if resp := signIn(t, r, "alice", "secret"); resp.Code != http.StatusOK {
		t.Fatalf("provisioning login failed: %d", resp.Code)
	}
	if resp := signIn(t, r, "alice", "wrong"); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestMeReturnsCallerIdentity(t *testing.T) {
	r := setupRouter(t)

	resp := signIn(t, r, "alice", "secret")
	var login user.LoginResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	meResp := httptest.NewRecorder()
	r.ServeHTTP(meResp, req)

	if meResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", meResp.Code)
	}

	var info user.Info
	if err := json.Unmarshal(meResp.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode identity: %v", err)
	}
	if info.Username != "alice" {
		t.Fatalf("expected alice, got %q", info.Username)
	}
}

func TestMeRejectsMissingToken(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}
