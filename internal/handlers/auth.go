package handlers

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/clinicxz/backend/internal/auth"
	"github.com/clinicxz/backend/internal/services"
)

// POST /token (form: username, password)
func Login(users *services.Users, tokens *auth.Tokens) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		if username == "" || password == "" {
			auth.Unauthorized(w, "Incorrect username or password")
			return
		}

		u, err := users.Authenticate(r.Context(), username, password)
		if err != nil {
			hlog.FromRequest(r).Info().Str("username", username).Msg("login rejected")
			auth.Unauthorized(w, "Incorrect username or password")
			return
		}

		tok, _, err := tokens.Issue(u.Username)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"access_token": tok,
			"token_type":   "bearer",
		})
	}
}

// GET /users/me
func Me(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFrom(r.Context())
	if !ok {
		auth.Unauthorized(w, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"username": u.Username})
}
