package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/larder/pkg/config"
	"github.com/ghuser/larder/pkg/logger"
)

// newTestStore returns a gorilla CookieStore (no Redis required) for unit tests.
// In production the RedisStore is used; the sessions.Store interface is identical.
func newTestStore() sessions.Store {
	return sessions.NewCookieStore(
		[]byte("test-auth-key-must-be-32-bytes!!"),
		[]byte("test-enc-key-must-be-32-bytes!!!"),
	)
}

// newTestLogger creates a logger that discards output.
func newTestLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

func newTestVerifier() *TokenVerifier {
	return NewTokenVerifier("test-jwt-secret-must-be-32-bytes!", "larder-test")
}

// requestWithValues builds a request carrying a session cookie holding values.
func requestWithValues(t *testing.T, store sessions.Store, values map[string]string) *http.Request {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/items", nil)

	session, err := store.Get(r, sessionName)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	for k, v := range values {
		session.Values[k] = v
	}
	if err := session.Save(r, w); err != nil {
		t.Fatalf("save session: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func capture(t *testing.T, got *Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := IdentityFromCtx(r.Context())
		if err != nil {
			t.Fatalf("identity missing from context: %v", err)
		}
		*got = id
		w.WriteHeader(http.StatusOK)
	})
}

func mustNotCall(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})
}

func TestRequireAuth_ValidSession(t *testing.T) {
	store := newTestStore()
	userID, chefID := uuid.New(), uuid.New()

	var got Identity
	r := requestWithValues(t, store, map[string]string{
		sessionUserIDKey: userID.String(),
		sessionRoleKey:   "home_chef",
		sessionChefIDKey: chefID.String(),
	})
	w := httptest.NewRecorder()
	RequireAuth(store, nil, newTestLogger())(capture(t, &got)).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got.UserID != userID || got.Role != "home_chef" || got.ChefID == nil || *got.ChefID != chefID {
		t.Fatalf("unexpected identity in context: %+v", got)
	}
}

func TestRequireAuth_SessionRejections(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
	}{
		{"missing user_id", map[string]string{sessionRoleKey: "founder"}},
		{"invalid user_id", map[string]string{sessionUserIDKey: "not-a-valid-uuid"}},
		{"invalid chef_id", map[string]string{sessionUserIDKey: uuid.NewString(), sessionChefIDKey: "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore()
			r := requestWithValues(t, store, tt.values)
			w := httptest.NewRecorder()
			RequireAuth(store, nil, newTestLogger())(mustNotCall(t)).ServeHTTP(w, r)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestRequireAuth_MissingCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	w := httptest.NewRecorder()
	RequireAuth(newTestStore(), newTestVerifier(), newTestLogger())(mustNotCall(t)).ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_NoSourcesConfigured(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	w := httptest.NewRecorder()
	RequireAuth(nil, nil, newTestLogger())(mustNotCall(t)).ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_BearerToken(t *testing.T) {
	v := newTestVerifier()
	want := Identity{UserID: uuid.New(), Role: "founder"}
	token, err := v.Issue(want, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var got Identity
	r := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	RequireAuth(nil, v, newTestLogger())(capture(t, &got)).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got.UserID != want.UserID || got.Role != "founder" || got.ChefID != nil {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestRequireAuth_BearerTokenRejected(t *testing.T) {
	other := NewTokenVerifier("another-secret-that-is-32-bytes!!", "larder-test")
	token, err := other.Issue(Identity{UserID: uuid.New(), Role: "founder"}, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	RequireAuth(newTestStore(), newTestVerifier(), newTestLogger())(mustNotCall(t)).ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestSaveIdentity_RoundTrip(t *testing.T) {
	store := newTestStore()
	chefID := uuid.New()
	want := Identity{UserID: uuid.New(), Role: "home_chef", ChefID: &chefID}

	w1 := httptest.NewRecorder()
	if err := SaveIdentity(store, w1, httptest.NewRequest(http.MethodPost, "/login", nil), want); err != nil {
		t.Fatalf("save identity: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	for _, c := range w1.Result().Cookies() {
		r.AddCookie(c)
	}

	var got Identity
	w := httptest.NewRecorder()
	RequireAuth(store, nil, newTestLogger())(capture(t, &got)).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got.UserID != want.UserID || *got.ChefID != chefID {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestRequireAuth_BindsIdentityToRequestLog(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, &config.Config{LogLevel: "info"})
	v := newTestVerifier()
	chefID := uuid.New()
	id := Identity{UserID: uuid.New(), Role: "home_chef", ChefID: &chefID}
	token, err := v.Issue(id, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	h := logger.Middleware(log)(RequireAuth(nil, v, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))
	r := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), r)

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["user_id"] != id.UserID.String() || line["role"] != "home_chef" || line["chef_id"] != chefID.String() {
		t.Fatalf("identity missing from request log: %v", line)
	}
}
