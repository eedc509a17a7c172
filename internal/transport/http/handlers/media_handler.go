package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/praytyushpande/crewlyx/internal/services/auth"
	mediasvc "github.com/praytyushpande/crewlyx/internal/services/media"
	"github.com/praytyushpande/crewlyx/internal/transport/http/dto"
	httperrors "github.com/praytyushpande/crewlyx/internal/transport/http/errors"
)

const maxUploadMemory = 8 << 20

type MediaHandler struct {
	service *mediasvc.Service
}

func NewMediaHandler(service *mediasvc.Service) *MediaHandler {
	return &MediaHandler{service: service}
}

// UploadProfilePhoto accepts a multipart form with a "photo" file field.
func (h *MediaHandler) UploadProfilePhoto(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "photo file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	url, err := h.service.UploadProfilePhoto(
		r.Context(),
		identity.UserID,
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
		header.Size,
	)
	if err != nil {
		switch {
		case errors.Is(err, mediasvc.ErrUnsupportedType):
			writeBadRequest(w, "VALIDATION_ERROR", "unsupported image type")
		case errors.Is(err, mediasvc.ErrTooLarge):
			writeBadRequest(w, "VALIDATION_ERROR", "photo exceeds the size limit")
		case errors.Is(err, mediasvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid upload")
		default:
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ProfilePhotoResponse{ProfilePhoto: url})
}
