package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/diarylab/backend/internal/config"
)

func newService(ttl time.Duration) *TokenService {
	return NewTokenService(config.AuthConfig{
		Secret: "unit-test-secret-with-enough-entropy-0123",
		TTL:    ttl,
	})
}

func TestTokenRoundtrip(t *testing.T) {
	svc := newService(5 * time.Minute)

	token, err := svc.Issue("alice")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	identity, err := svc.Validate(token)
	assert.NoError(t, err)
	assert.Equal(t, "alice", identity)
}

func TestTokenExpired(t *testing.T) {
	svc := newService(-1 * time.Minute)

	token, err := svc.Issue("alice")
	assert.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenTamperedSignature(t *testing.T) {
	svc := newService(5 * time.Minute)
	other := NewTokenService(config.AuthConfig{
		Secret: "a-completely-different-signing-secret-xyz",
		TTL:    5 * time.Minute,
	})

	token, err := other.Issue("alice")
	assert.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenMalformed(t *testing.T) {
	svc := newService(5 * time.Minute)

	for _, raw := range []string{"", "not-a-jwt", "a.b.c", "🙂🙂🙂"} {
		_, err := svc.Validate(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", raw)
	}
}

func TestPasswordHashCheck(t *testing.T) {
	hash, err := HashPassword("correct horse")
	assert.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
}
