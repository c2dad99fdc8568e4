package ws

import (
	"errors"
	"net/http"
	"strings"

	"github.com/diarylab/backend/internal/auth"
)

// ErrMissingToken signals an upgrade request carrying no credentials at all.
var ErrMissingToken = errors.New("missing authentication token")

// Gate validates an upgrade request's credentials before a connection is
// admitted. It never half-admits: a request either yields an identity or a
// classified rejection.
type Gate struct {
	tokens *auth.TokenService
}

// NewGate builds a handshake gate over the token service.
func NewGate(tokens *auth.TokenService) *Gate {
	return &Gate{tokens: tokens}
}

// Admit extracts and validates the session token, preferring the
// Authorization header and falling back to the token query parameter.
// It returns the authenticated identity and the raw token.
func (g *Gate) Admit(r *http.Request) (identity, token string, err error) {
	token = extractToken(r)
	if token == "" {
		return "", "", ErrMissingToken
	}

	identity, err = g.tokens.Validate(token)
	if err != nil {
		return "", "", err
	}

	return identity, token, nil
}

func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return r.URL.Query().Get("token")
}
