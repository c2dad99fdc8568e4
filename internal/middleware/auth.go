package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/diarylab/backend/internal/auth"
	"github.com/diarylab/backend/internal/model/user"
	"github.com/diarylab/backend/pkg/utils"
)

type contextKey string

const userContextKey contextKey = "diaryUser"

// AccountResolver turns an authenticated username into its stored account.
type AccountResolver interface {
	Lookup(ctx context.Context, username string) (user.User, error)
}

// RequireAuth validates the Bearer token and attaches the caller's account to
// the request context. Requests without a valid token get a 401.
func RequireAuth(tokens *auth.TokenService, accounts AccountResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				utils.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			identity, err := tokens.Validate(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			account, err := accounts.Lookup(r.Context(), identity)
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "unknown account")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the account attached by RequireAuth.
func UserFromContext(ctx context.Context) (user.User, bool) {
	account, ok := ctx.Value(userContextKey).(user.User)
	return account, ok
}
