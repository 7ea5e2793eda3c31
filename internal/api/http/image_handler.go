package http

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"

	"github.com/gorilla/mux"

	"alugaai-backend/internal/apperr"
	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/logger"
	"alugaai-backend/internal/security"
	"alugaai-backend/internal/service"
	"alugaai-backend/internal/storage"
)

// multipart overhead allowed on top of the image limit
const formOverhead = 1 << 20

type ImageHandler struct {
	catalogSvc service.CatalogService
	maxBytes   int64
}

func NewImageHandler(catalogSvc service.CatalogService, maxBytes int64) *ImageHandler {
	return &ImageHandler{catalogSvc: catalogSvc, maxBytes: maxBytes}
}

// UploadItemImage accepts either a multipart form with an "image" file or a
// raw body whose Content-Type is the image type.
func (h *ImageHandler) UploadItemImage(w http.ResponseWriter, r *http.Request) {
	caller := security.IdentityFromContext(r.Context())
	if caller == nil {
		writeError(w, apperr.Unauthorized("authentication required"))
		return
	}
	itemID := mux.Vars(r)["id"]
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+formOverhead)

	var (
		src         io.Reader
		filename    string
		contentType string
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("image")
		if err != nil {
			writeError(w, apperr.Validation("validation failed", map[string]string{"image": "is required"}))
			return
		}
		defer file.Close()
		src = file
		filename = header.Filename
		contentType, _, _ = mime.ParseMediaType(header.Header.Get("Content-Type"))
	} else {
		src = r.Body
		filename = r.URL.Query().Get("filename")
		contentType = mediaType
	}

	br := bufio.NewReaderSize(src, 512)
	if contentType == "" || contentType == "application/octet-stream" {
		head, _ := br.Peek(512)
		contentType, _, _ = mime.ParseMediaType(http.DetectContentType(head))
	}
	if filename == "" {
		filename = "image" + extensionFor(contentType)
	}

	item, err := h.catalogSvc.AttachImage(r.Context(), *caller, itemID, path.Base(filename), contentType, br)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = apperr.Validation("image too large", map[string]string{"image": "exceeds the upload limit"})
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemView(item))
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ""
}

type itemView struct {
	*domain.Item
	PricePerDay string `json:"price_per_day"`
	Price       string `json:"price"`
}

func newItemView(it *domain.Item) itemView {
	return itemView{Item: it, PricePerDay: it.PricePerDay.StringFixed(2), Price: it.DisplayPrice()}
}

// FileHandler serves blobs of the local storage backend.
type FileHandler struct {
	files *storage.LocalStorage
}

func NewFileHandler(files *storage.LocalStorage) *FileHandler {
	return &FileHandler{files: files}
}

func (h *FileHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	file, err := h.files.Open(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, storage.ErrInvalidKey) {
			writeError(w, apperr.NotFound("file", key))
			return
		}
		writeError(w, apperr.Backend(err, "open file"))
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", storage.ContentTypeFor(key))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, file); err != nil {
		logger.Debug("File stream interrupted", "key", key, "error", err)
	}
}
