package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"alugaai-backend/internal/events"
	"alugaai-backend/internal/metrics"
	"alugaai-backend/internal/security"
	"alugaai-backend/internal/service"
	"alugaai-backend/internal/storage"
)

type RouterConfig struct {
	Catalog  service.CatalogService
	Rentals  service.RentalService
	Feed     events.Subscriber
	Verifier security.Verifier
	Metrics  *metrics.Metrics
	// Files is nil unless blobs live on the local filesystem.
	Files          *storage.LocalStorage
	MaxUploadBytes int64
	// Ready reports backend health for /healthz; nil means always ready.
	Ready func(ctx context.Context) error
}

func NewRouter(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}
	r.HandleFunc("/healthz", healthHandler(cfg.Ready)).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	auth := RequireAuth(cfg.Verifier)

	images := NewImageHandler(cfg.Catalog, cfg.MaxUploadBytes)
	api.Handle("/items/{id}/image", auth(http.HandlerFunc(images.UploadItemImage))).Methods(http.MethodPut, http.MethodPost)

	if cfg.Files != nil {
		files := NewFileHandler(cfg.Files)
		api.HandleFunc("/files/{key:.+}", files.ServeFile).Methods(http.MethodGet)
	}

	api.Handle("/ws/rentals", auth(NewRentalFeedHandler(cfg.Rentals, cfg.Feed))).Methods(http.MethodGet)
	return r
}

func healthHandler(ready func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
