package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/cliptube/cliptube/internal/accounts/media"
	"github.com/cliptube/cliptube/internal/accounts/service"
	"github.com/cliptube/cliptube/pkg/httpx"
	"github.com/cliptube/cliptube/pkg/idx"
	"github.com/cliptube/cliptube/pkg/slogx"
)

// MeHandler serves GET /v1/users/me, returning the authenticated user's
// profile.
type MeHandler struct {
	Users *service.UserService
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.GetUserByID(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, user.Public(), "")
}

// ChangePasswordHandler serves POST /v1/users/me/password.
type ChangePasswordHandler struct {
	Users *service.UserService
}

func (h *ChangePasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteFailure(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	userID := httpx.UserIDFromContext(r.Context())
	if err := h.Users.ChangePassword(r.Context(), userID, body.OldPassword, body.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, nil, "password changed")
}

type mediaKind int

const (
	mediaKindAvatar mediaKind = iota
	mediaKindCover
)

// MediaUpdateHandler serves PUT /v1/users/me/avatar and
// PUT /v1/users/me/cover. Both take a multipart form with a single file
// field matching the media kind.
type MediaUpdateHandler struct {
	Users    *service.UserService
	Uploader media.Uploader
	Kind     mediaKind
}

func (h *MediaUpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := httpx.UserIDFromContext(ctx)

	field, prefix := "avatar", "avatars"
	if h.Kind == mediaKindCover {
		field, prefix = "cover_image", "covers"
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRegisterBody)
	if err := r.ParseMultipartForm(maxRegisterBody); err != nil {
		httpx.WriteFailure(w, http.StatusBadRequest, "expected a multipart form")
		return
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			httpx.WriteFailure(w, http.StatusBadRequest, field+" file is required")
			return
		}
		httpx.WriteFailure(w, http.StatusBadRequest, "invalid "+field+" file")
		return
	}
	defer file.Close()

	key := prefix + "/" + idx.New().String() + strings.ToLower(path.Ext(header.Filename))
	url, err := h.Uploader.Upload(ctx, key, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		slogx.FromContext(ctx).Error("media upload failed",
			slog.String("key", key), slog.Any("err", err))
		httpx.WriteFailure(w, http.StatusInternalServerError, "media upload failed")
		return
	}

	switch h.Kind {
	case mediaKindCover:
		updated, err := h.Users.UpdateCoverImage(ctx, userID, url)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		httpx.WriteSuccess(w, http.StatusOK, updated.Public(), "cover image updated")
	default:
		updated, err := h.Users.UpdateAvatar(ctx, userID, url)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		httpx.WriteSuccess(w, http.StatusOK, updated.Public(), "avatar updated")
	}
}

// WatchHistoryHandler serves GET and POST /v1/users/me/history.
type WatchHistoryHandler struct {
	Users *service.UserService
}

func (h *WatchHistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	if r.Method == http.MethodPost {
		var body struct {
			VideoID string `json:"video_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.WriteFailure(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := h.Users.RecordWatch(r.Context(), userID, body.VideoID); err != nil {
			writeServiceError(w, r, err)
			return
		}
		httpx.WriteSuccess(w, http.StatusCreated, nil, "watch recorded")
		return
	}

	history, err := h.Users.WatchHistory(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if history == nil {
		history = []string{}
	}
	httpx.WriteSuccess(w, http.StatusOK, map[string]any{"watch_history": history}, "")
}
