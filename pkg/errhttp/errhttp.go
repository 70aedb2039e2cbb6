// Package errhttp maps domain sentinel errors to HTTP status codes.
// Inventory errors are matched by kind, so every specific sentinel that wraps
// a kind is covered without its own case.
package errhttp

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/ghuser/larder/pkg/auth"
	"github.com/ghuser/larder/pkg/cache"
	"github.com/ghuser/larder/pkg/httpx"
	"github.com/ghuser/larder/services/inventory/domain"
)

var hideInternal atomic.Bool

// HideInternalErrors makes WriteError answer 5xx responses with the bare
// status text instead of the error message. The API enables it in production.
func HideInternalErrors(hide bool) {
	hideInternal.Store(hide)
}

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	httpx.JSONError(w, status, httpx.SafeError(err, status, hideInternal.Load()))
}

// StatusFor returns the HTTP status code for err.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrIdentityNotFound), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized // 401
	case errors.Is(err, domain.ErrPermission):
		return http.StatusForbidden // 403
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict // 409
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity // 422
	case errors.Is(err, cache.ErrLockNotObtained):
		return http.StatusServiceUnavailable // 503
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout // 504
	default:
		return http.StatusInternalServerError // 500
	}
}
