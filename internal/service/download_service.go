package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iconidentify/mediagrab/internal/config"
	"github.com/iconidentify/mediagrab/internal/delivery"
	"github.com/iconidentify/mediagrab/internal/domain"
	"github.com/iconidentify/mediagrab/internal/platform"
	"github.com/iconidentify/mediagrab/internal/repository"
)

// Compressor shrinks an over-budget video in a single pass.
type Compressor interface {
	CompressVideo(ctx context.Context, inputPath, outputPath string) error
}

// DownloadService orchestrates the full retrieval workflow: resolve,
// extract, select, fetch, shrink if needed, deliver, record.
type DownloadService struct {
	resolver    *platform.Resolver
	registry    repository.URLRegistry
	jobRepo     repository.JobRepository
	historyRepo repository.HistoryRepository
	deliverer   delivery.Adapter
	compressor  Compressor // nil disables the compression fallback
	cfg         config.DownloadConfig
	tempDir     string
	logger      *slog.Logger
}

// NewDownloadService creates a new download service.
func NewDownloadService(
	resolver *platform.Resolver,
	registry repository.URLRegistry,
	jobRepo repository.JobRepository,
	historyRepo repository.HistoryRepository,
	deliverer delivery.Adapter,
	compressor Compressor,
	cfg config.DownloadConfig,
	tempDir string,
	logger *slog.Logger,
) *DownloadService {
	return &DownloadService{
		resolver:    resolver,
		registry:    registry,
		jobRepo:     jobRepo,
		historyRepo: historyRepo,
		deliverer:   deliverer,
		compressor:  compressor,
		cfg:         cfg,
		tempDir:     tempDir,
		logger:      logger,
	}
}

// InspectResponse describes what a URL resolves to.
type InspectResponse struct {
	Token      string
	Platform   domain.Platform
	Title      string
	IsPlaylist bool
	ItemCount  int
	HasAudio   bool
	HasVideo   bool
}

// Inspect resolves a URL, extracts its metadata and registers it under a
// short token for follow-up requests.
func (s *DownloadService) Inspect(ctx context.Context, rawURL string) (*InspectResponse, error) {
	adapter, err := s.resolver.Resolve(rawURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ExtractTimeout)
	defer cancel()

	info, err := adapter.Extract(ctx, rawURL, platform.ExtractOptions{FlatPlaylist: true})
	if err != nil {
		return nil, err
	}

	token, err := s.registry.Register(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("register url: %w", err)
	}

	resp := &InspectResponse{
		Token:      token,
		Platform:   adapter.Name(),
		Title:      info.Title,
		IsPlaylist: info.IsPlaylist(),
		ItemCount:  len(info.Entries),
		HasAudio:   domain.HasAudioFormats(info.Formats),
		HasVideo:   domain.HasVideoFormats(info.Formats),
	}

	s.logger.Info("url inspected",
		"platform", string(resp.Platform),
		"token", token,
		"playlist", resp.IsPlaylist,
	)

	return resp, nil
}

// ResolveToken turns a registry token back into its URL.
func (s *DownloadService) ResolveToken(ctx context.Context, token string) (string, error) {
	return s.registry.Lookup(ctx, token)
}

// EnqueueSingle queues a single-item download for the owner. Only one job
// per owner may be active at a time.
func (s *DownloadService) EnqueueSingle(ctx context.Context, ownerID, rawURL, title string, audioOnly bool) (*domain.DownloadJob, error) {
	if _, err := s.resolver.Resolve(rawURL); err != nil {
		return nil, err
	}

	jobID := domain.JobID("job_" + uuid.New().String()[:8])
	job := domain.NewSingleJob(jobID, ownerID, rawURL, title, audioOnly)

	if err := s.jobRepo.Enqueue(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info("single download queued",
		"job_id", jobID,
		"owner_id", ownerID,
		"audio_only", audioOnly,
	)

	return job, nil
}

// EnqueueBulk queues a sequential bulk download over playlist items.
func (s *DownloadService) EnqueueBulk(ctx context.Context, ownerID string, items []domain.PlaylistItem, audioOnly bool) (*domain.DownloadJob, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyPlaylist
	}

	jobID := domain.JobID("job_" + uuid.New().String()[:8])
	job := domain.NewBulkJob(jobID, ownerID, items, audioOnly)

	if err := s.jobRepo.Enqueue(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info("bulk download queued",
		"job_id", jobID,
		"owner_id", ownerID,
		"items", len(items),
		"audio_only", audioOnly,
	)

	return job, nil
}

// Cancel requests cooperative cancellation of the owner's active job. The
// item in flight finishes; remaining items are skipped.
func (s *DownloadService) Cancel(ctx context.Context, ownerID string) (domain.JobID, error) {
	id, err := s.jobRepo.RequestCancel(ctx, ownerID)
	if err != nil {
		return "", err
	}
	s.logger.Info("cancellation requested", "job_id", id, "owner_id", ownerID)
	return id, nil
}

// Status returns the current state of a job.
func (s *DownloadService) Status(ctx context.Context, id domain.JobID) (*domain.DownloadJob, error) {
	return s.jobRepo.Get(ctx, id)
}

// History returns the owner's recent download records.
func (s *DownloadService) History(ctx context.Context, ownerID string) ([]*domain.DownloadRecord, error) {
	return s.historyRepo.ListByOwner(ctx, ownerID, s.cfg.HistoryLimit)
}

// Process executes a dequeued job to completion. Called by the worker
// pool; the job is already marked running.
func (s *DownloadService) Process(ctx context.Context, job *domain.DownloadJob) error {
	switch job.Mode {
	case domain.JobModeBulk:
		return s.processBulk(ctx, job)
	default:
		return s.processSingle(ctx, job)
	}
}

func (s *DownloadService) processSingle(ctx context.Context, job *domain.DownloadJob) error {
	logger := s.logger.With("job_id", job.ID)

	err := s.fetchAndDeliver(ctx, job.OwnerID, job.URL, job.Title, job.AudioOnly)
	if _, mErr := s.jobRepo.Mutate(ctx, job.ID, func(j *domain.DownloadJob) {
		j.RecordItem(err == nil)
	}); mErr != nil {
		return fmt.Errorf("update job progress: %w", mErr)
	}

	if err != nil {
		logger.Error("single download failed", "url", job.URL, "error", err)
		return err
	}

	logger.Info("single download delivered", "url", job.URL)
	return nil
}

// processBulk runs playlist items strictly in order. Before each item the
// cancel flag is checked; a cancelled job stops at the item boundary and
// keeps the work already done. The job argument is a private copy; state
// changes are committed through the repository.
func (s *DownloadService) processBulk(ctx context.Context, job *domain.DownloadJob) error {
	logger := s.logger.With("job_id", job.ID)

	current := job
	for _, item := range job.Items {
		cancelled, err := s.jobRepo.CancelRequested(ctx, job.ID)
		if err != nil {
			return fmt.Errorf("check cancel flag: %w", err)
		}
		if cancelled {
			current, err = s.jobRepo.Mutate(ctx, job.ID, func(j *domain.DownloadJob) {
				j.MarkCancelled()
			})
			if err != nil {
				return fmt.Errorf("update cancelled job: %w", err)
			}
			logger.Info("bulk download cancelled",
				"completed", current.Completed,
				"total", current.Total,
			)
			return nil
		}

		itemErr := s.fetchAndDeliver(ctx, job.OwnerID, item.URL, item.Title, job.AudioOnly)
		current, err = s.jobRepo.Mutate(ctx, job.ID, func(j *domain.DownloadJob) {
			j.RecordItem(itemErr == nil)
		})
		if err != nil {
			return fmt.Errorf("update job progress: %w", err)
		}

		if itemErr != nil {
			// One bad item does not sink the batch.
			logger.Warn("bulk item failed",
				"index", item.Index,
				"url", item.URL,
				"error", itemErr,
			)
		}
	}

	logger.Info("bulk download finished",
		"succeeded", current.Succeeded,
		"failed", current.Failed,
		"total", current.Total,
	)
	return nil
}

// fetchAndDeliver runs the whole pipeline for one media item and writes a
// history record regardless of outcome.
func (s *DownloadService) fetchAndDeliver(ctx context.Context, ownerID, rawURL, title string, audioOnly bool) error {
	filename, size, err := s.doFetchAndDeliver(ctx, ownerID, rawURL, title, audioOnly)

	rec := &domain.DownloadRecord{
		ID:        "rec_" + uuid.New().String()[:8],
		OwnerID:   ownerID,
		URL:       rawURL,
		Filename:  filename,
		SizeBytes: size,
		AudioOnly: audioOnly,
		Outcome:   domain.OutcomeDelivered,
		CreatedAt: time.Now(),
	}
	if adapter, rerr := s.resolver.Resolve(rawURL); rerr == nil {
		rec.Platform = adapter.Name()
	}
	if err != nil {
		rec.Outcome = domain.OutcomeFailed
		rec.Error = err.Error()
	}
	if herr := s.historyRepo.Record(context.WithoutCancel(ctx), rec); herr != nil {
		s.logger.Warn("history record failed", "url", rawURL, "error", herr)
	}

	return err
}

func (s *DownloadService) doFetchAndDeliver(ctx context.Context, ownerID, rawURL, title string, audioOnly bool) (string, int64, error) {
	adapter, err := s.resolver.Resolve(rawURL)
	if err != nil {
		return "", 0, err
	}

	extractCtx, cancel := context.WithTimeout(ctx, s.cfg.ExtractTimeout)
	info, err := adapter.Extract(extractCtx, rawURL, platform.ExtractOptions{NoPlaylist: true})
	cancel()
	if err != nil {
		return "", 0, err
	}
	if info.IsPlaylist() {
		return "", 0, domain.ErrIsPlaylist
	}
	if title == "" {
		title = info.Title
	}

	formats := domain.NormalizeFormats(info.Formats, info.Duration)
	selected, ok := domain.SelectForBudget(formats, s.cfg.MaxFileSize, audioOnly)
	formatID := ""
	switch {
	case ok:
		formatID = selected.ID
	case !audioOnly && anyKnownSizeVideo(formats):
		// Every sized video rendition is over budget. Callers turn this
		// into an audio-only offer instead of a flat failure.
		return "", 0, domain.ErrNoFormatWithinBudget
	default:
		// Sizes are unknown: let the adapter's default selector pick and
		// enforce the budget on the actual file below.
	}

	workDir, err := os.MkdirTemp(s.tempDir, "grab-*")
	if err != nil {
		return "", 0, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	path, err := adapter.Download(fetchCtx, platform.DownloadRequest{
		URL:       rawURL,
		FormatID:  formatID,
		AudioOnly: audioOnly,
		WorkDir:   workDir,
	})
	cancel()
	if err != nil {
		return "", 0, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return "", 0, fmt.Errorf("stat download: %w", err)
	}
	size := stat.Size()

	if size > s.cfg.MaxFileSize {
		path, size, err = s.shrink(ctx, path, workDir, audioOnly)
		if err != nil {
			return "", 0, err
		}
	}

	filename := s.buildFilename(title, path, audioOnly)

	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open payload: %w", err)
	}
	defer f.Close()

	if err := s.deliverer.Deliver(ctx, ownerID, f, delivery.Metadata{
		Filename:  filename,
		SizeBytes: size,
		Audio:     audioOnly,
		Platform:  adapter.Name(),
		SourceURL: rawURL,
		Title:     title,
	}); err != nil {
		return "", 0, fmt.Errorf("deliver payload: %w", err)
	}

	return filename, size, nil
}

// shrink applies the single-pass compression fallback. Audio payloads and
// deployments without ffmpeg go straight to the size error; there is no
// second attempt when the compressed file still exceeds the budget.
func (s *DownloadService) shrink(ctx context.Context, path, workDir string, audioOnly bool) (string, int64, error) {
	if audioOnly || s.compressor == nil {
		return "", 0, domain.ErrPayloadTooLarge
	}

	out := filepath.Join(workDir, "compressed.mp4")
	compressCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	if err := s.compressor.CompressVideo(compressCtx, path, out); err != nil {
		return "", 0, fmt.Errorf("%w: %s", domain.ErrCompressionFailed, err)
	}

	stat, err := os.Stat(out)
	if err != nil {
		return "", 0, fmt.Errorf("stat compressed file: %w", err)
	}
	if stat.Size() > s.cfg.MaxFileSize {
		return "", 0, domain.ErrPayloadTooLarge
	}

	s.logger.Info("payload compressed", "size_bytes", stat.Size())
	return out, stat.Size(), nil
}

// buildFilename derives the delivered filename from the media title and
// the real container extension of the fetched file.
func (s *DownloadService) buildFilename(title, path string, audioOnly bool) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		if audioOnly {
			ext = ".mp3"
		} else {
			ext = ".mp4"
		}
	}

	fallback := "media" + ext
	if audioOnly {
		fallback = "audio" + ext
	}

	return domain.SanitizeFilename(title+ext, fallback)
}

func anyKnownSizeVideo(formats []domain.Format) bool {
	for _, f := range formats {
		if f.HasVideo && f.SizeBytes != nil {
			return true
		}
	}
	return false
}
