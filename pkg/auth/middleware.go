package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/larder/pkg/httpx"
	"github.com/ghuser/larder/pkg/logger"
)

const (
	sessionName        = "larder_session"
	sessionUserIDKey   = "user_id"
	sessionRoleKey     = "role"
	sessionChefIDKey   = "chef_id"
	bearerPrefix       = "Bearer "
	msgAuthRequired    = "authentication required"
	msgInvalidSession  = "invalid session data"
	msgInvalidIdentity = "invalid identity token"
)

// RequireAuth is a chi middleware that enforces authentication. A request
// carrying "Authorization: Bearer <jwt>" is verified against tokens; any other
// request must carry a session cookie with user_id, role and (for home chefs)
// chef_id. Either source may be nil to disable it.
//
// After this middleware, handlers can safely call auth.IdentityFromCtx(r.Context()).
func RequireAuth(store sessions.Store, tokens *TokenVerifier, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if header := r.Header.Get("Authorization"); strings.HasPrefix(header, bearerPrefix) && tokens != nil {
				id, err := tokens.Verify(strings.TrimPrefix(header, bearerPrefix))
				if err != nil {
					log.WarnContext(r.Context(), "invalid bearer token", "error", err)
					httpx.JSONError(w, http.StatusUnauthorized, msgInvalidIdentity)
					return
				}
				r = logger.Annotate(r, identityLogAttrs(id)...)
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
				return
			}

			if store == nil {
				httpx.JSONError(w, http.StatusUnauthorized, msgAuthRequired)
				return
			}

			session, err := store.Get(r, sessionName)
			if err != nil {
				log.WarnContext(r.Context(), "invalid session cookie", "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, msgAuthRequired)
				return
			}

			userIDStr, ok := session.Values[sessionUserIDKey].(string)
			if !ok || userIDStr == "" {
				log.WarnContext(r.Context(), "session missing user_id")
				httpx.JSONError(w, http.StatusUnauthorized, msgAuthRequired)
				return
			}

			id, err := identityFromSession(userIDStr, session.Values)
			if err != nil {
				log.WarnContext(r.Context(), "invalid identity in session", "user_id", userIDStr, "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, msgInvalidSession)
				return
			}

			r = logger.Annotate(r, identityLogAttrs(id)...)
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// identityLogAttrs are bound to the request's log context once the caller is known.
func identityLogAttrs(id Identity) []any {
	attrs := []any{"user_id", id.UserID.String(), "role", id.Role}
	if id.ChefID != nil {
		attrs = append(attrs, "chef_id", id.ChefID.String())
	}
	return attrs
}

func identityFromSession(userIDStr string, values map[any]any) (Identity, error) {
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return Identity{}, err
	}
	role, _ := values[sessionRoleKey].(string)
	id := Identity{UserID: userID, Role: role}
	if chefStr, ok := values[sessionChefIDKey].(string); ok && chefStr != "" {
		chefID, err := uuid.Parse(chefStr)
		if err != nil {
			return Identity{}, err
		}
		id.ChefID = &chefID
	}
	return id, nil
}

// SaveIdentity stores id in the session cookie. The external auth service's
// login callback calls it after it has authenticated the user.
func SaveIdentity(store sessions.Store, w http.ResponseWriter, r *http.Request, id Identity) error {
	session, err := store.Get(r, sessionName)
	if err != nil {
		return err
	}
	session.Values[sessionUserIDKey] = id.UserID.String()
	session.Values[sessionRoleKey] = id.Role
	delete(session.Values, sessionChefIDKey)
	if id.ChefID != nil {
		session.Values[sessionChefIDKey] = id.ChefID.String()
	}
	return session.Save(r, w)
}
