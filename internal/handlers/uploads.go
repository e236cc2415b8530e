package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"mathblog/internal/storage"
)

const maxUploadSize = 10 << 20 // 10 MiB

// UploadHandler stores post images in object storage. A nil uploader keeps
// the route registered but always answers 503, which makes a missing S3
// configuration visible instead of a silent 404.
type UploadHandler struct {
	uploader *storage.Uploader
	log      *slog.Logger
}

func NewUploadHandler(uploader *storage.Uploader, log *slog.Logger) *UploadHandler {
	return &UploadHandler{uploader: uploader, log: log}
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		respondJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "object storage is not configured"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, r, h.log, badRequest("file exceeds upload limit"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, h.log, badRequest("multipart field %q is required", "file"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(w, r, h.log, badRequest("only image uploads are allowed"))
		return
	}

	result, err := h.uploader.Upload(r.Context(), file, header.Size, header.Filename, contentType)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}
