package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/diarylab/backend/internal/auth"
	"github.com/diarylab/backend/internal/model/user"
	"github.com/diarylab/backend/internal/store"
)

// ErrInvalidCredentials covers a wrong password for an existing account.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Service handles login with first-login auto-provisioning.
type Service struct {
	store  *store.Store
	tokens *auth.TokenService
	log    zerolog.Logger
}

// NewService wires the user service.
func NewService(st *store.Store, tokens *auth.TokenService, log zerolog.Logger) *Service {
	return &Service{store: st, tokens: tokens, log: log.With().Str("component", "user-service").Logger()}
}

// Login authenticates the credentials. An unknown username provisions a new
// account with those credentials; a known one must match its stored hash.
func (s *Service) Login(ctx context.Context, req user.LoginRequest) (user.LoginResponse, error) {
	if req.Username == "" || req.Password == "" {
		return user.LoginResponse{}, ErrInvalidCredentials
	}

	account, err := s.store.UserByUsername(ctx, req.Username)
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		account, err = s.provision(ctx, req.Username, req.Password)
		if err != nil {
			return user.LoginResponse{}, err
		}
	case err != nil:
		return user.LoginResponse{}, fmt.Errorf("load user: %w", err)
	default:
		if !auth.CheckPassword(account.PasswordHash, req.Password) {
			return user.LoginResponse{}, ErrInvalidCredentials
		}
	}

	token, err := s.tokens.Issue(account.Username)
	if err != nil {
		return user.LoginResponse{}, fmt.Errorf("issue token: %w", err)
	}

	return user.LoginResponse{
		Token:    token,
		Type:     "Bearer",
		ID:       account.ID,
		Username: account.Username,
		Role:     account.Role,
	}, nil
}

// Lookup resolves a username to its account.
func (s *Service) Lookup(ctx context.Context, username string) (user.User, error) {
	return s.store.UserByUsername(ctx, username)
}

// Exists reports whether the username maps to a provisioned account.
func (s *Service) Exists(ctx context.Context, username string) bool {
	_, err := s.store.UserByUsername(ctx, username)
	return err == nil
}

func (s *Service) provision(ctx context.Context, username, password string) (user.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.store.CreateUser(ctx, username, hash, user.RoleUser)
	if err != nil {
		return user.User{}, fmt.Errorf("provision user: %w", err)
	}

	s.log.Info().Str("user", username).Msg("auto-provisioned account on first login")
	return account, nil
}
