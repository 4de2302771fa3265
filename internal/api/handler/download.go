package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/mediagrab/internal/domain"
	"github.com/iconidentify/mediagrab/internal/service"
)

// DownloadHandler handles media inspection and download HTTP requests.
type DownloadHandler struct {
	downloadSvc *service.DownloadService
	logger      *slog.Logger
}

// NewDownloadHandler creates a new download handler.
func NewDownloadHandler(downloadSvc *service.DownloadService, logger *slog.Logger) *DownloadHandler {
	return &DownloadHandler{
		downloadSvc: downloadSvc,
		logger:      logger,
	}
}

// InspectRequest is the JSON request body for URL inspection.
type InspectRequest struct {
	URL string `json:"url"`
}

// InspectResponse describes what a URL resolves to.
type InspectResponse struct {
	Token      string `json:"token"`
	Platform   string `json:"platform"`
	Title      string `json:"title"`
	IsPlaylist bool   `json:"is_playlist"`
	ItemCount  int    `json:"item_count,omitempty"`
	HasAudio   bool   `json:"has_audio"`
	HasVideo   bool   `json:"has_video"`
}

// DownloadRequest is the JSON request body for starting a download.
// Either url or token must be set.
type DownloadRequest struct {
	OwnerID   string `json:"owner_id"`
	URL       string `json:"url,omitempty"`
	Token     string `json:"token,omitempty"`
	AudioOnly bool   `json:"audio_only"`
}

// JobResponse describes a job's current state.
type JobResponse struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	Mode      string `json:"mode"`
	Completed int    `json:"completed"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Total     int    `json:"total"`
	Error     string `json:"error,omitempty"`
}

// CancelRequest is the JSON request body for cancelling a job.
type CancelRequest struct {
	OwnerID string `json:"owner_id"`
}

// HistoryResponse lists an owner's recent downloads.
type HistoryResponse struct {
	Records []HistoryRecord `json:"records"`
}

// HistoryRecord is one history entry.
type HistoryRecord struct {
	URL       string `json:"url"`
	Platform  string `json:"platform"`
	Filename  string `json:"filename,omitempty"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
	AudioOnly bool   `json:"audio_only"`
	Outcome   string `json:"outcome"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Inspect handles POST /api/v1/inspect
func (h *DownloadHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	var req InspectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		h.writeError(w, http.StatusBadRequest, "missing url")
		return
	}

	resp, err := h.downloadSvc.Inspect(r.Context(), req.URL)
	if err != nil {
		h.writeServiceError(w, err, "inspect failed")
		return
	}

	h.writeJSON(w, http.StatusOK, InspectResponse{
		Token:      resp.Token,
		Platform:   string(resp.Platform),
		Title:      resp.Title,
		IsPlaylist: resp.IsPlaylist,
		ItemCount:  resp.ItemCount,
		HasAudio:   resp.HasAudio,
		HasVideo:   resp.HasVideo,
	})
}

// Submit handles POST /api/v1/downloads
func (h *DownloadHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OwnerID == "" {
		h.writeError(w, http.StatusBadRequest, "missing owner_id")
		return
	}

	rawURL := req.URL
	if rawURL == "" {
		if req.Token == "" {
			h.writeError(w, http.StatusBadRequest, "missing url or token")
			return
		}
		resolved, err := h.downloadSvc.ResolveToken(r.Context(), req.Token)
		if err != nil {
			h.writeServiceError(w, err, "resolve token failed")
			return
		}
		rawURL = resolved
	}

	job, err := h.downloadSvc.EnqueueSingle(r.Context(), req.OwnerID, rawURL, "", req.AudioOnly)
	if err != nil {
		h.writeServiceError(w, err, "submit failed")
		return
	}

	h.writeJSON(w, http.StatusAccepted, jobResponse(job))
}

// Status handles GET /api/v1/jobs/{jobID}
func (h *DownloadHandler) Status(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		h.writeError(w, http.StatusBadRequest, "missing job ID")
		return
	}

	job, err := h.downloadSvc.Status(r.Context(), domain.JobID(jobID))
	if err != nil {
		h.writeServiceError(w, err, "status failed")
		return
	}

	h.writeJSON(w, http.StatusOK, jobResponse(job))
}

// Cancel handles POST /api/v1/downloads/cancel
func (h *DownloadHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OwnerID == "" {
		h.writeError(w, http.StatusBadRequest, "missing owner_id")
		return
	}

	jobID, err := h.downloadSvc.Cancel(r.Context(), req.OwnerID)
	if err != nil {
		h.writeServiceError(w, err, "cancel failed")
		return
	}

	h.writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id": string(jobID),
		"status": "cancelling",
	})
}

// History handles GET /api/v1/history?owner_id=...
func (h *DownloadHandler) History(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		h.writeError(w, http.StatusBadRequest, "missing owner_id")
		return
	}

	records, err := h.downloadSvc.History(r.Context(), ownerID)
	if err != nil {
		h.logger.Error("history failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	resp := HistoryResponse{Records: make([]HistoryRecord, 0, len(records))}
	for _, rec := range records {
		resp.Records = append(resp.Records, HistoryRecord{
			URL:       rec.URL,
			Platform:  string(rec.Platform),
			Filename:  rec.Filename,
			SizeBytes: rec.SizeBytes,
			AudioOnly: rec.AudioOnly,
			Outcome:   string(rec.Outcome),
			Error:     rec.Error,
			CreatedAt: rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func jobResponse(job *domain.DownloadJob) JobResponse {
	return JobResponse{
		JobID:     string(job.ID),
		Status:    string(job.Status),
		Mode:      string(job.Mode),
		Completed: job.Completed,
		Succeeded: job.Succeeded,
		Failed:    job.Failed,
		Total:     job.Total,
		Error:     job.LastError,
	}
}

// writeServiceError maps domain errors onto HTTP status codes.
func (h *DownloadHandler) writeServiceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedSource):
		h.writeError(w, http.StatusUnprocessableEntity, "unsupported source")
	case errors.Is(err, domain.ErrStaleReference):
		h.writeError(w, http.StatusGone, "token expired, inspect the URL again")
	case errors.Is(err, domain.ErrJobAlreadyInProgress):
		h.writeError(w, http.StatusConflict, "a download is already in progress for this owner")
	case errors.Is(err, domain.ErrJobNotFound):
		h.writeError(w, http.StatusNotFound, "job not found")
	case errors.Is(err, domain.ErrExtractionFailed):
		h.writeError(w, http.StatusBadGateway, "extraction failed")
	default:
		h.logger.Error(logMsg, "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *DownloadHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *DownloadHandler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
