package errhttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ghuser/larder/pkg/auth"
	"github.com/ghuser/larder/pkg/cache"
	"github.com/ghuser/larder/services/inventory/domain"
)

func TestWriteError_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"ErrIdentityNotFound", auth.ErrIdentityNotFound, http.StatusUnauthorized},
		{"ErrInvalidToken", fmt.Errorf("%w: expired", auth.ErrInvalidToken), http.StatusUnauthorized},
		{"ErrCatalogForbidden", domain.ErrCatalogForbidden, http.StatusForbidden},
		{"ErrOwnerForbidden", domain.ErrOwnerForbidden, http.StatusForbidden},
		{"ErrItemNotFound", domain.ErrItemNotFound, http.StatusNotFound},
		{"wrapped ErrMovementNotFound", fmt.Errorf("get movement: %w", domain.ErrMovementNotFound), http.StatusNotFound},
		{"ErrAlreadyExists", fmt.Errorf("item sku: %w", domain.ErrAlreadyExists), http.StatusConflict},
		{"ErrInvalidQuantity", domain.ErrInvalidQuantity, http.StatusUnprocessableEntity},
		{"wrapped ErrInvalidKind", fmt.Errorf("movement 3: %w", domain.ErrInvalidKind), http.StatusUnprocessableEntity},
		{"ErrMovementAlreadyReversed", domain.ErrMovementAlreadyReversed, http.StatusUnprocessableEntity},
		{"ErrLockNotObtained", fmt.Errorf("%w: key", cache.ErrLockNotObtained), http.StatusServiceUnavailable},
		{"deadline", fmt.Errorf("list movements: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"unknown error", errors.New("something unexpected"), http.StatusInternalServerError},
		{"generic wrapped error", fmt.Errorf("context: %w", errors.New("db down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestWriteError_JSONBodyIsVerbatim(t *testing.T) {
	err := fmt.Errorf("%w: quantity must be positive, got -1", domain.ErrInvalidQuantity)
	w := httptest.NewRecorder()
	WriteError(w, err)

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	if body["error"] != err.Error() {
		t.Fatalf("expected error %q, got %q", err.Error(), body["error"])
	}
}

func TestWriteError_ContentType(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, domain.ErrItemNotFound)

	ct := w.Header().Get("Content-Type")
	if ct == "" {
		t.Fatal("Content-Type header not set")
	}
}

func TestWriteError_HideInternalErrors(t *testing.T) {
	HideInternalErrors(true)
	t.Cleanup(func() { HideInternalErrors(false) })

	decode := func(w *httptest.ResponseRecorder) string {
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("response body is not valid JSON: %v", err)
		}
		return body["error"]
	}

	w := httptest.NewRecorder()
	WriteError(w, errors.New("pq: connection refused"))
	if got := decode(w); got != "Internal Server Error" {
		t.Fatalf("internal error leaked: %q", got)
	}

	w = httptest.NewRecorder()
	WriteError(w, domain.ErrItemNotFound)
	if got := decode(w); got != domain.ErrItemNotFound.Error() {
		t.Fatalf("expected domain message, got %q", got)
	}
}
