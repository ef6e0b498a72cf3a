package http

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/cliptube/cliptube/internal/accounts/media"
	"github.com/cliptube/cliptube/internal/accounts/service"
	"github.com/cliptube/cliptube/pkg/httpx"
	"github.com/cliptube/cliptube/pkg/idx"
	"github.com/cliptube/cliptube/pkg/slogx"
)

// maxRegisterBody caps the multipart registration payload (profile fields
// plus avatar and cover images).
const maxRegisterBody = 16 << 20 // 16 MiB

// RegisterHandler serves POST /v1/users/register. Accepts a multipart form
// with the profile fields, a required avatar image, and an optional cover
// image.
type RegisterHandler struct {
	Sessions *service.SessionService
	Uploader media.Uploader
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxRegisterBody)
	if err := r.ParseMultipartForm(maxRegisterBody); err != nil {
		httpx.WriteFailure(w, http.StatusBadRequest, "expected a multipart form")
		return
	}

	params := service.RegisterParams{
		FullName: r.FormValue("full_name"),
		Email:    r.FormValue("email"),
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}

	avatarURL, err := h.uploadFormFile(r, "avatar", "avatars")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			httpx.WriteFailure(w, http.StatusBadRequest, "avatar image is required")
			return
		}
		log.Error("avatar upload failed", slog.Any("err", err))
		httpx.WriteFailure(w, http.StatusInternalServerError, "media upload failed")
		return
	}
	params.AvatarURL = avatarURL

	coverURL, err := h.uploadFormFile(r, "cover_image", "covers")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		log.Error("cover upload failed", slog.Any("err", err))
		httpx.WriteFailure(w, http.StatusInternalServerError, "media upload failed")
		return
	}
	params.CoverImageURL = coverURL

	user, err := h.Sessions.Register(ctx, params)
	if err != nil {
		// Registration failed after upload; drop the orphaned objects
		h.removeUploaded(r, avatarURL, coverURL)
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusCreated, user, "user registered")
}

// uploadFormFile streams a multipart file field to media storage and
// returns its public URL. Returns http.ErrMissingFile when the field is
// absent.
func (h *RegisterHandler) uploadFormFile(r *http.Request, field, prefix string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", err
	}
	defer file.Close()

	return h.Uploader.Upload(
		r.Context(),
		objectKey(prefix, header),
		file,
		header.Size,
		header.Header.Get("Content-Type"),
	)
}

func (h *RegisterHandler) removeUploaded(r *http.Request, urls ...string) {
	for _, u := range urls {
		var key string
		if i := strings.Index(u, "/avatars/"); i >= 0 {
			key = u[i+1:]
		} else if i := strings.Index(u, "/covers/"); i >= 0 {
			key = u[i+1:]
		} else {
			continue
		}
		if err := h.Uploader.Remove(r.Context(), key); err != nil {
			slogx.FromContext(r.Context()).Warn("orphaned media cleanup failed",
				slog.String("key", key), slog.Any("err", err))
		}
	}
}

// objectKey builds a unique storage key, keeping the original extension so
// content negotiation on the CDN side still works.
func objectKey(prefix string, header *multipart.FileHeader) string {
	return prefix + "/" + idx.New().String() + strings.ToLower(path.Ext(header.Filename))
}
