package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linguahub/api/internal/application/content"
)

// 20 MB cap on uploaded audio.
const maxAudioUpload = 20 << 20

// AssetHandler handles module audio upload and download endpoints.
type AssetHandler struct {
	svc content.Service
}

func NewAssetHandler(svc content.Service) *AssetHandler { return &AssetHandler{svc: svc} }

// UploadAudio stores the intro audio for a module (admin only, multipart form
// with a "file" field).
func (h *AssetHandler) UploadAudio(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAudioUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field required")
		return
	}
	defer file.Close()
	url, err := h.svc.UploadModuleAudio(r.Context(), chi.URLParam(r, "id"), header.Filename, file)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

// AudioURL returns a short-lived presigned URL for a module's audio.
func (h *AssetHandler) AudioURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.AudioURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
