package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSessionHandler_ExchangesTokenForCookie(t *testing.T) {
	store, v := newTestStore(), newTestVerifier()
	chefID := uuid.New()
	want := Identity{UserID: uuid.New(), Role: "home_chef", ChefID: &chefID}
	token, err := v.Issue(want, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := httptest.NewRequest(http.MethodPost, "/api/session", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	SessionHandler(store, v, newTestLogger()).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	next := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	for _, c := range w.Result().Cookies() {
		next.AddCookie(c)
	}
	var got Identity
	w2 := httptest.NewRecorder()
	RequireAuth(store, nil, newTestLogger())(capture(t, &got)).ServeHTTP(w2, next)

	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200 with session cookie, got %d", w2.Code)
	}
	if got.UserID != want.UserID || got.ChefID == nil || *got.ChefID != chefID {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestSessionHandler_Rejections(t *testing.T) {
	other := NewTokenVerifier("another-secret-that-is-32-bytes!!", "larder-test")
	forged, err := other.Issue(Identity{UserID: uuid.New(), Role: "founder"}, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"basic auth", "Basic Zm9vOmJhcg=="},
		{"wrong signature", "Bearer " + forged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/session", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			SessionHandler(newTestStore(), newTestVerifier(), newTestLogger()).ServeHTTP(w, r)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
			if len(w.Result().Cookies()) != 0 {
				t.Fatal("no session cookie expected on rejection")
			}
		})
	}
}
