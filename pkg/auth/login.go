package auth

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"

	"github.com/ghuser/larder/pkg/httpx"
	"github.com/ghuser/larder/pkg/logger"
)

type sessionResponse struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	ChefID string `json:"chef_id,omitempty"`
}

// SessionHandler exchanges a bearer identity token for a session cookie so
// browser clients need not hold the token. It answers 401 for a missing or
// invalid token.
func SessionHandler(store sessions.Store, tokens *TokenVerifier, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			httpx.JSONError(w, http.StatusUnauthorized, msgAuthRequired)
			return
		}
		id, err := tokens.Verify(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			log.WarnContext(r.Context(), "session exchange rejected", "error", err)
			httpx.JSONError(w, http.StatusUnauthorized, msgInvalidIdentity)
			return
		}

		if err := SaveIdentity(store, w, r, id); err != nil {
			log.ErrorContext(r.Context(), "save session", "user_id", id.UserID, "error", err)
			httpx.JSONError(w, http.StatusInternalServerError, "could not create session")
			return
		}

		resp := sessionResponse{UserID: id.UserID.String(), Role: id.Role}
		if id.ChefID != nil {
			resp.ChefID = id.ChefID.String()
		}
		httpx.JSON(w, http.StatusOK, resp)
	}
}
