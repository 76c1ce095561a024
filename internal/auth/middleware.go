package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/clinicxz/backend/internal/models"
)

type ctxKey struct{}

// UserLookup resolves a token subject to an active user.
type UserLookup interface {
	ActiveUser(ctx context.Context, username string) (*models.User, error)
}

// RequireUser is middleware: blocks access unless the request carries a valid
// bearer token for an active user.
func RequireUser(tokens *Tokens, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r)
			if !ok {
				Unauthorized(w, "Not authenticated")
				return
			}
			username, err := tokens.Parse(raw)
			if err != nil {
				Unauthorized(w, "Could not validate credentials")
				return
			}
			u, err := users.ActiveUser(r.Context(), username)
			if err != nil {
				Unauthorized(w, "Could not validate credentials")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFrom returns the authenticated caller, if any.
func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*models.User)
	return u, ok && u != nil
}

// Unauthorized writes a 401 with the bearer challenge header.
func Unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}
