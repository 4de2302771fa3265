package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iconidentify/mediagrab/internal/api/handler"
	mw "github.com/iconidentify/mediagrab/internal/api/middleware"
)

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(
	downloadHandler *handler.DownloadHandler,
	playlistHandler *handler.PlaylistHandler,
	healthHandler *handler.HealthHandler,
	apiKey string,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(middleware.Timeout(5 * time.Minute))

	// Health endpoints (no auth)
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)

	// API v1 (authenticated)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(apiKey))

		// Media inspection and single downloads
		r.Post("/inspect", downloadHandler.Inspect)
		r.Post("/downloads", downloadHandler.Submit)
		r.Post("/downloads/cancel", downloadHandler.Cancel)
		r.Get("/jobs/{jobID}", downloadHandler.Status)
		r.Get("/history", downloadHandler.History)

		// Playlist sessions and bulk downloads
		r.Post("/playlists", playlistHandler.Browse)
		r.Get("/playlists/{ownerID}/pages/{page}", playlistHandler.Page)
		r.Post("/playlists/{ownerID}/items/{index}/download", playlistHandler.DownloadItem)
		r.Post("/playlists/{ownerID}/download-all", playlistHandler.DownloadAll)
		r.Delete("/playlists/{ownerID}", playlistHandler.Close)
	})

	return r
}
