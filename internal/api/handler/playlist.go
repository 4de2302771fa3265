package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/mediagrab/internal/domain"
	"github.com/iconidentify/mediagrab/internal/service"
)

// PlaylistHandler handles playlist browsing and bulk download requests.
type PlaylistHandler struct {
	playlistSvc *service.PlaylistService
	downloadSvc *service.DownloadService
	logger      *slog.Logger
}

// NewPlaylistHandler creates a new playlist handler.
func NewPlaylistHandler(
	playlistSvc *service.PlaylistService,
	downloadSvc *service.DownloadService,
	logger *slog.Logger,
) *PlaylistHandler {
	return &PlaylistHandler{
		playlistSvc: playlistSvc,
		downloadSvc: downloadSvc,
		logger:      logger,
	}
}

// BrowseRequest is the JSON request body for opening a playlist session.
type BrowseRequest struct {
	OwnerID string `json:"owner_id"`
	URL     string `json:"url"`
}

// ItemDownloadRequest is the JSON request body for item/bulk downloads.
type ItemDownloadRequest struct {
	AudioOnly bool `json:"audio_only"`
}

// PageResponse is one rendered playlist page.
type PageResponse struct {
	Title      string         `json:"title"`
	Platform   string         `json:"platform"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	TotalItems int            `json:"total_items"`
	Items      []ItemResponse `json:"items"`
	HasNext    bool           `json:"has_next"`
	HasPrev    bool           `json:"has_prev"`
}

// ItemResponse is one playlist item.
type ItemResponse struct {
	Index    int      `json:"index"`
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	Duration *float64 `json:"duration,omitempty"`
}

// Browse handles POST /api/v1/playlists
func (h *PlaylistHandler) Browse(w http.ResponseWriter, r *http.Request) {
	var req BrowseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OwnerID == "" || req.URL == "" {
		h.writeError(w, http.StatusBadRequest, "missing owner_id or url")
		return
	}

	page, err := h.playlistSvc.Browse(r.Context(), req.OwnerID, req.URL)
	if err != nil {
		h.writeServiceError(w, err, "browse failed")
		return
	}

	h.writeJSON(w, http.StatusOK, pageResponse(page))
}

// Page handles GET /api/v1/playlists/{ownerID}/pages/{page}
func (h *PlaylistHandler) Page(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")
	pageNum, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || pageNum < 0 {
		h.writeError(w, http.StatusBadRequest, "invalid page number")
		return
	}

	page, err := h.playlistSvc.Page(r.Context(), ownerID, pageNum)
	if err != nil {
		h.writeServiceError(w, err, "page failed")
		return
	}

	h.writeJSON(w, http.StatusOK, pageResponse(page))
}

// DownloadItem handles POST /api/v1/playlists/{ownerID}/items/{index}/download
func (h *PlaylistHandler) DownloadItem(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid item index")
		return
	}

	var req ItemDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.playlistSvc.Item(r.Context(), ownerID, index)
	if err != nil {
		h.writeServiceError(w, err, "item lookup failed")
		return
	}

	job, err := h.downloadSvc.EnqueueSingle(r.Context(), ownerID, item.URL, item.Title, req.AudioOnly)
	if err != nil {
		h.writeServiceError(w, err, "item download failed")
		return
	}

	h.writeJSON(w, http.StatusAccepted, jobResponse(job))
}

// DownloadAll handles POST /api/v1/playlists/{ownerID}/download-all
func (h *PlaylistHandler) DownloadAll(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")

	var req ItemDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items, err := h.playlistSvc.Items(r.Context(), ownerID)
	if err != nil {
		h.writeServiceError(w, err, "session lookup failed")
		return
	}

	job, err := h.downloadSvc.EnqueueBulk(r.Context(), ownerID, items, req.AudioOnly)
	if err != nil {
		h.writeServiceError(w, err, "bulk download failed")
		return
	}

	h.writeJSON(w, http.StatusAccepted, jobResponse(job))
}

// Close handles DELETE /api/v1/playlists/{ownerID}
func (h *PlaylistHandler) Close(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")

	if err := h.playlistSvc.Close(r.Context(), ownerID); err != nil {
		h.logger.Error("close session failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to close session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pageResponse(page *service.PageResponse) PageResponse {
	resp := PageResponse{
		Title:      page.Title,
		Platform:   string(page.Platform),
		Page:       page.Page,
		TotalPages: page.TotalPages,
		TotalItems: page.TotalItems,
		Items:      make([]ItemResponse, 0, len(page.Items)),
		HasNext:    page.HasNext,
		HasPrev:    page.HasPrev,
	}
	for _, item := range page.Items {
		resp.Items = append(resp.Items, ItemResponse{
			Index:    item.Index,
			Title:    item.Title,
			URL:      item.URL,
			Duration: item.Duration,
		})
	}
	return resp
}

func (h *PlaylistHandler) writeServiceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedSource):
		h.writeError(w, http.StatusUnprocessableEntity, "unsupported source")
	case errors.Is(err, domain.ErrEmptyPlaylist):
		h.writeError(w, http.StatusUnprocessableEntity, "playlist has no downloadable items")
	case errors.Is(err, domain.ErrSessionNotFound):
		h.writeError(w, http.StatusNotFound, "no active playlist session")
	case errors.Is(err, domain.ErrInvalidPlaylistItem):
		h.writeError(w, http.StatusNotFound, "playlist item out of range")
	case errors.Is(err, domain.ErrJobAlreadyInProgress):
		h.writeError(w, http.StatusConflict, "a download is already in progress for this owner")
	case errors.Is(err, domain.ErrExtractionFailed):
		h.writeError(w, http.StatusBadGateway, "extraction failed")
	default:
		h.logger.Error(logMsg, "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *PlaylistHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *PlaylistHandler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
