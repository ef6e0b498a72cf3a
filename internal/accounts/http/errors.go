package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cliptube/cliptube/internal/accounts/service"
	"github.com/cliptube/cliptube/pkg/httpx"
	"github.com/cliptube/cliptube/pkg/slogx"
)

// writeServiceError maps service sentinels onto HTTP failure envelopes.
// Anything unmapped is a 500 and gets logged; the caller only sees a
// generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		httpx.WriteFailure(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, service.ErrDuplicateUser):
		httpx.WriteFailure(w, http.StatusConflict, "username or email already taken")
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteFailure(w, http.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteFailure(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrMissingRefresh):
		httpx.WriteFailure(w, http.StatusUnauthorized, "refresh token required")
	case errors.Is(err, service.ErrInvalidToken):
		httpx.WriteFailure(w, http.StatusUnauthorized, "invalid refresh token")
	case errors.Is(err, service.ErrStaleRefresh):
		httpx.WriteFailure(w, http.StatusUnauthorized, "refresh token is expired or used")
	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("err", err))
		httpx.WriteFailure(w, http.StatusInternalServerError, "internal server error")
	}
}
