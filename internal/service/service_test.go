package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/iconidentify/mediagrab/internal/config"
	"github.com/iconidentify/mediagrab/internal/delivery"
	"github.com/iconidentify/mediagrab/internal/domain"
	"github.com/iconidentify/mediagrab/internal/platform"
	"github.com/iconidentify/mediagrab/internal/repository"
)

const testBudget = 50 * 1024 * 1024

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDownloadConfig() config.DownloadConfig {
	return config.DownloadConfig{
		MaxFileSize:    testBudget,
		ExtractTimeout: 5 * time.Second,
		FetchTimeout:   5 * time.Second,
		PageSize:       5,
		HistoryLimit:   20,
	}
}

// fakeAdapter implements platform.Adapter with canned metadata and
// synthesized payload files.
type fakeAdapter struct {
	name        domain.Platform
	info        *domain.MediaInfo
	extractErr  error
	payloadSize int64
	failURLs    map[string]bool
	onDownload  func(url string)

	mu        sync.Mutex
	downloads []string
}

func (f *fakeAdapter) Name() domain.Platform { return f.name }

func (f *fakeAdapter) CanHandle(rawURL string) bool { return true }

func (f *fakeAdapter) Extract(ctx context.Context, rawURL string, opts platform.ExtractOptions) (*domain.MediaInfo, error) {
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	info := *f.info
	info.URL = rawURL
	return &info, nil
}

func (f *fakeAdapter) Download(ctx context.Context, req platform.DownloadRequest) (string, error) {
	f.mu.Lock()
	f.downloads = append(f.downloads, req.URL)
	f.mu.Unlock()

	if f.failURLs[req.URL] {
		return "", domain.NewPlatformError(f.name, "download", domain.ErrDownloadFailed)
	}

	ext := ".mp4"
	if req.AudioOnly {
		ext = ".mp3"
	}
	path := filepath.Join(req.WorkDir, "payload"+ext)
	if err := os.WriteFile(path, make([]byte, f.payloadSize), 0o644); err != nil {
		return "", err
	}

	if f.onDownload != nil {
		f.onDownload(req.URL)
	}
	return path, nil
}

func (f *fakeAdapter) downloadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.downloads)
}

// fakeCompressor writes an output file of a fixed size.
type fakeCompressor struct {
	outSize int64
	calls   int
}

func (f *fakeCompressor) CompressVideo(ctx context.Context, inputPath, outputPath string) error {
	f.calls++
	return os.WriteFile(outputPath, make([]byte, f.outSize), 0o644)
}

// fakeDeliverer records delivered payloads.
type fakeDeliverer struct {
	mu        sync.Mutex
	delivered []delivery.Metadata
}

func (f *fakeDeliverer) Deliver(ctx context.Context, ownerID string, content io.Reader, meta delivery.Metadata) error {
	if _, err := io.Copy(io.Discard, content); err != nil {
		return err
	}
	f.mu.Lock()
	f.delivered = append(f.delivered, meta)
	f.mu.Unlock()
	return nil
}

func (f *fakeDeliverer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.delivered)
}

// fakeHistory is an in-memory history repository.
type fakeHistory struct {
	mu      sync.Mutex
	records []*domain.DownloadRecord
}

func (f *fakeHistory) Record(ctx context.Context, rec *domain.DownloadRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeHistory) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.DownloadRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.DownloadRecord
	for _, r := range f.records {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeHistory) Close() error { return nil }

func (f *fakeHistory) last() *domain.DownloadRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.records) == 0 {
		return nil
	}
	return f.records[len(f.records)-1]
}

type serviceFixture struct {
	svc       *DownloadService
	adapter   *fakeAdapter
	deliverer *fakeDeliverer
	history   *fakeHistory
	compress  *fakeCompressor
	jobRepo   *repository.InMemoryJobRepository
}

func singleVideoInfo() *domain.MediaInfo {
	size := int64(10 * 1024 * 1024)
	return &domain.MediaInfo{
		Title: "a video",
		Formats: []domain.Format{
			{ID: "18", HasVideo: true, HasAudio: true, SizeBytes: &size, Container: "mp4"},
		},
	}
}

func newFixture(t *testing.T, adapter *fakeAdapter) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		adapter:   adapter,
		deliverer: &fakeDeliverer{},
		history:   &fakeHistory{},
		compress:  &fakeCompressor{outSize: 1024},
		jobRepo:   repository.NewInMemoryJobRepository(),
	}

	f.svc = NewDownloadService(
		platform.NewResolver([]platform.Adapter{adapter}),
		repository.NewInMemoryURLRegistry(),
		f.jobRepo,
		f.history,
		f.deliverer,
		f.compress,
		testDownloadConfig(),
		t.TempDir(),
		testLogger(),
	)
	return f
}

// runJob simulates what the worker pool does with a dequeued job.
func (f *serviceFixture) runJob(t *testing.T, job *domain.DownloadJob) error {
	t.Helper()
	ctx := context.Background()

	running, err := f.jobRepo.Mutate(ctx, job.ID, func(j *domain.DownloadJob) {
		j.MarkRunning()
	})
	if err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}
	return f.svc.Process(ctx, running)
}

// finalState fetches the committed job state after processing.
func (f *serviceFixture) finalState(t *testing.T, id domain.JobID) *domain.DownloadJob {
	t.Helper()
	job, err := f.svc.Status(context.Background(), id)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	return job
}

// =============================================================================
// Inspect Tests
// =============================================================================

func TestDownloadService_Inspect(t *testing.T) {
	adapter := &fakeAdapter{name: domain.PlatformYouTube, info: singleVideoInfo()}
	f := newFixture(t, adapter)

	resp, err := f.svc.Inspect(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if len(resp.Token) != 8 {
		t.Errorf("token length = %d, want 8", len(resp.Token))
	}
	if resp.Platform != domain.PlatformYouTube {
		t.Errorf("platform = %q", resp.Platform)
	}
	if resp.IsPlaylist {
		t.Error("single video should not be a playlist")
	}
	if !resp.HasVideo || !resp.HasAudio {
		t.Error("format capabilities should be reported")
	}

	url, err := f.svc.ResolveToken(context.Background(), resp.Token)
	if err != nil {
		t.Fatalf("ResolveToken() error = %v", err)
	}
	if url != "https://youtu.be/abc" {
		t.Errorf("ResolveToken() = %q", url)
	}
}

func TestDownloadService_Inspect_ExtractionFailure(t *testing.T) {
	adapter := &fakeAdapter{
		name:       domain.PlatformYouTube,
		extractErr: domain.NewPlatformError(domain.PlatformYouTube, "extract", domain.ErrExtractionFailed),
	}
	f := newFixture(t, adapter)

	_, err := f.svc.Inspect(context.Background(), "https://youtu.be/abc")
	if !errors.Is(err, domain.ErrExtractionFailed) {
		t.Errorf("Inspect() error = %v, want ErrExtractionFailed", err)
	}
}

// =============================================================================
// Single Download Tests
// =============================================================================

func TestDownloadService_SingleDownload(t *testing.T) {
	adapter := &fakeAdapter{
		name:        domain.PlatformYouTube,
		info:        singleVideoInfo(),
		payloadSize: 10 * 1024 * 1024,
	}
	f := newFixture(t, adapter)
	ctx := context.Background()

	job, err := f.svc.EnqueueSingle(ctx, "owner-1", "https://youtu.be/abc", "", false)
	if err != nil {
		t.Fatalf("EnqueueSingle() error = %v", err)
	}

	if err := f.runJob(t, job); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if f.deliverer.count() != 1 {
		t.Fatalf("delivered %d payloads, want 1", f.deliverer.count())
	}
	meta := f.deliverer.delivered[0]
	if meta.Filename != "a video.mp4" {
		t.Errorf("filename = %q", meta.Filename)
	}
	if f.compress.calls != 0 {
		t.Error("in-budget payload must not be compressed")
	}

	rec := f.history.last()
	if rec == nil || rec.Outcome != domain.OutcomeDelivered {
		t.Fatalf("history record = %+v, want delivered", rec)
	}
	if rec.Filename != "a video.mp4" || rec.SizeBytes != 10*1024*1024 {
		t.Errorf("history record = %q/%d, want delivered filename and size", rec.Filename, rec.SizeBytes)
	}
}

func TestDownloadService_SingleRejectsPlaylist(t *testing.T) {
	adapter := &fakeAdapter{
		name: domain.PlatformYouTube,
		info: playlistInfo(3),
	}
	f := newFixture(t, adapter)

	job, err := f.svc.EnqueueSingle(context.Background(), "owner-1", "https://youtube.com/playlist?list=x", "", false)
	if err != nil {
		t.Fatalf("EnqueueSingle() error = %v", err)
	}

	err = f.runJob(t, job)
	if !errors.Is(err, domain.ErrIsPlaylist) {
		t.Fatalf("Process() error = %v, want ErrIsPlaylist", err)
	}
	if adapter.downloadCount() != 0 {
		t.Error("playlist URLs must go through the playlist flow, not a direct fetch")
	}
}

func TestDownloadService_OneJobPerOwner(t *testing.T) {
	adapter := &fakeAdapter{name: domain.PlatformYouTube, info: singleVideoInfo()}
	f := newFixture(t, adapter)
	ctx := context.Background()

	if _, err := f.svc.EnqueueSingle(ctx, "owner-1", "https://youtu.be/a", "", false); err != nil {
		t.Fatalf("EnqueueSingle() error = %v", err)
	}
	_, err := f.svc.EnqueueSingle(ctx, "owner-1", "https://youtu.be/b", "", false)
	if !errors.Is(err, domain.ErrJobAlreadyInProgress) {
		t.Errorf("second enqueue error = %v, want ErrJobAlreadyInProgress", err)
	}

	// A different owner is unaffected.
	if _, err := f.svc.EnqueueSingle(ctx, "owner-2", "https://youtu.be/c", "", false); err != nil {
		t.Errorf("other owner enqueue error = %v", err)
	}
}

func TestDownloadService_CompressionFallback(t *testing.T) {
	adapter := &fakeAdapter{
		name:        domain.PlatformYouTube,
		info:        &domain.MediaInfo{Title: "big"},
		payloadSize: testBudget + 1,
	}
	f := newFixture(t, adapter)
	f.compress.outSize = 1024

	job, err := f.svc.EnqueueSingle(context.Background(), "owner-1", "https://youtu.be/abc", "", false)
	if err != nil {
		t.Fatalf("EnqueueSingle() error = %v", err)
	}

	if err := f.runJob(t, job); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if f.compress.calls != 1 {
		t.Fatalf("compressor calls = %d, want exactly 1", f.compress.calls)
	}
	if f.deliverer.count() != 1 {
		t.Fatal("compressed payload should be delivered")
	}
	if f.deliverer.delivered[0].SizeBytes != 1024 {
		t.Errorf("delivered size = %d, want compressed size", f.deliverer.delivered[0].SizeBytes)
	}
}

func TestDownloadService_CompressionSinglePass(t *testing.T) {
	adapter := &fakeAdapter{
		name:        domain.PlatformYouTube,
		info:        &domain.MediaInfo{Title: "huge"},
		payloadSize: testBudget + 1,
	}
	f := newFixture(t, adapter)
	// Still over budget after one pass.
	f.compress.outSize = testBudget + 1

	job, _ := f.svc.EnqueueSingle(context.Background(), "owner-1", "https://youtu.be/abc", "", false)

	err := f.runJob(t, job)
	if !errors.Is(err, domain.ErrPayloadTooLarge) {
		t.Fatalf("Process() error = %v, want ErrPayloadTooLarge", err)
	}
	if f.compress.calls != 1 {
		t.Errorf("compressor calls = %d, want exactly 1", f.compress.calls)
	}
	if f.deliverer.count() != 0 {
		t.Error("over-budget payload must not be delivered")
	}
	if rec := f.history.last(); rec == nil || rec.Outcome != domain.OutcomeFailed {
		t.Errorf("history record = %+v, want failed", rec)
	}
}

func TestDownloadService_AudioNeverCompressed(t *testing.T) {
	adapter := &fakeAdapter{
		name:        domain.PlatformYouTube,
		info:        &domain.MediaInfo{Title: "long set"},
		payloadSize: testBudget + 1,
	}
	f := newFixture(t, adapter)

	job, _ := f.svc.EnqueueSingle(context.Background(), "owner-1", "https://youtu.be/abc", "", true)

	err := f.runJob(t, job)
	if !errors.Is(err, domain.ErrPayloadTooLarge) {
		t.Fatalf("Process() error = %v, want ErrPayloadTooLarge", err)
	}
	if f.compress.calls != 0 {
		t.Error("audio payloads must not go through video compression")
	}
}

func TestDownloadService_NoFormatWithinBudget(t *testing.T) {
	big := int64(testBudget * 2)
	adapter := &fakeAdapter{
		name: domain.PlatformYouTube,
		info: &domain.MediaInfo{
			Title: "big only",
			Formats: []domain.Format{
				{ID: "hd", HasVideo: true, HasAudio: true, SizeBytes: &big},
			},
		},
	}
	f := newFixture(t, adapter)

	job, _ := f.svc.EnqueueSingle(context.Background(), "owner-1", "https://youtu.be/abc", "", false)

	err := f.runJob(t, job)
	if !errors.Is(err, domain.ErrNoFormatWithinBudget) {
		t.Fatalf("Process() error = %v, want ErrNoFormatWithinBudget", err)
	}
	if adapter.downloadCount() != 0 {
		t.Error("nothing should be downloaded when every sized format is over budget")
	}
}

func TestDownloadService_UnknownSizesFallThrough(t *testing.T) {
	// No sized formats at all: fetch with the default selector and rely on
	// the post-download size check.
	adapter := &fakeAdapter{
		name: domain.PlatformYouTube,
		info: &domain.MediaInfo{
			Title: "mystery",
			Formats: []domain.Format{
				{ID: "x", HasVideo: true, HasAudio: true},
			},
		},
		payloadSize: 1024,
	}
	f := newFixture(t, adapter)

	job, _ := f.svc.EnqueueSingle(context.Background(), "owner-1", "https://youtu.be/abc", "", false)

	if err := f.runJob(t, job); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if f.deliverer.count() != 1 {
		t.Error("unknown-size media within budget should be delivered")
	}
}

// =============================================================================
// Bulk Download Tests
// =============================================================================

func bulkItems(n int) []domain.PlaylistItem {
	items := make([]domain.PlaylistItem, n)
	for i := range items {
		items[i] = domain.PlaylistItem{
			Index: i,
			URL:   fmt.Sprintf("https://youtu.be/item%d", i),
			Title: fmt.Sprintf("item %d", i),
		}
	}
	return items
}

func TestDownloadService_BulkSequential(t *testing.T) {
	adapter := &fakeAdapter{
		name:        domain.PlatformYouTube,
		info:        &domain.MediaInfo{Title: "item"},
		payloadSize: 1024,
	}
	f := newFixture(t, adapter)

	job, err := f.svc.EnqueueBulk(context.Background(), "owner-1", bulkItems(3), false)
	if err != nil {
		t.Fatalf("EnqueueBulk() error = %v", err)
	}

	if err := f.runJob(t, job); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	final := f.finalState(t, job.ID)
	if final.Succeeded != 3 || final.Failed != 0 || final.Completed != 3 {
		t.Errorf("counters = %d/%d/%d, want 3 succeeded", final.Succeeded, final.Failed, final.Completed)
	}
	for i, url := range adapter.downloads {
		if want := fmt.Sprintf("https://youtu.be/item%d", i); url != want {
			t.Errorf("download %d = %q, want %q (strict order)", i, url, want)
		}
	}
}

func TestDownloadService_BulkFailureIsolation(t *testing.T) {
	adapter := &fakeAdapter{
		name:        domain.PlatformYouTube,
		info:        &domain.MediaInfo{Title: "item"},
		payloadSize: 1024,
		failURLs:    map[string]bool{"https://youtu.be/item1": true},
	}
	f := newFixture(t, adapter)

	job, _ := f.svc.EnqueueBulk(context.Background(), "owner-1", bulkItems(4), false)

	if err := f.runJob(t, job); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	final := f.finalState(t, job.ID)
	if final.Succeeded != 3 || final.Failed != 1 || final.Completed != 4 {
		t.Errorf("counters = %d/%d/%d, want one failure and the rest delivered",
			final.Succeeded, final.Failed, final.Completed)
	}
	if f.deliverer.count() != 3 {
		t.Errorf("delivered %d payloads, want 3", f.deliverer.count())
	}
}

// Status snapshots must be readable while a bulk job is mutating its
// progress counters. Run with the race detector to verify.
func TestDownloadService_StatusDuringBulkRun(t *testing.T) {
	adapter := &fakeAdapter{
		name:        domain.PlatformYouTube,
		info:        &domain.MediaInfo{Title: "item"},
		payloadSize: 1024,
	}
	f := newFixture(t, adapter)

	job, err := f.svc.EnqueueBulk(context.Background(), "owner-1", bulkItems(20), false)
	if err != nil {
		t.Fatalf("EnqueueBulk() error = %v", err)
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			snap, err := f.svc.Status(context.Background(), job.ID)
			if err != nil {
				t.Errorf("Status() during bulk run error = %v", err)
				return
			}
			if snap.Completed > snap.Total || snap.Succeeded+snap.Failed != snap.Completed {
				t.Errorf("inconsistent progress snapshot: %+v", snap)
				return
			}
		}
	}()

	runErr := f.runJob(t, job)
	close(stop)
	wg.Wait()

	if runErr != nil {
		t.Fatalf("Process() error = %v", runErr)
	}
	final := f.finalState(t, job.ID)
	if final.Completed != 20 || final.Succeeded != 20 {
		t.Errorf("counters = %d/%d, want all 20 delivered", final.Completed, final.Succeeded)
	}
}

func TestDownloadService_BulkCancellationBoundary(t *testing.T) {
	f := &serviceFixture{}
	adapter := &fakeAdapter{
		name:        domain.PlatformYouTube,
		info:        &domain.MediaInfo{Title: "item"},
		payloadSize: 1024,
		onDownload: func(url string) {
			// Request cancellation while the second item is in flight.
			if url == "https://youtu.be/item1" {
				f.svc.Cancel(context.Background(), "owner-1")
			}
		},
	}
	*f = *newFixture(t, adapter)

	job, err := f.svc.EnqueueBulk(context.Background(), "owner-1", bulkItems(5), false)
	if err != nil {
		t.Fatalf("EnqueueBulk() error = %v", err)
	}

	if err := f.runJob(t, job); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	final := f.finalState(t, job.ID)
	if final.Status != domain.JobStatusCancelled {
		t.Fatalf("status = %q, want cancelled", final.Status)
	}
	if final.Completed != 2 {
		t.Errorf("completed = %d, want 2 (item in flight finishes)", final.Completed)
	}
	if adapter.downloadCount() != 2 {
		t.Errorf("downloads = %d, remaining items must be skipped", adapter.downloadCount())
	}

	// The owner's slot is free again.
	if _, err := f.svc.EnqueueSingle(context.Background(), "owner-1", "https://youtu.be/next", "", false); err != nil {
		t.Errorf("enqueue after cancellation error = %v", err)
	}
}

func TestDownloadService_CancelIdleOwner(t *testing.T) {
	adapter := &fakeAdapter{name: domain.PlatformYouTube, info: singleVideoInfo()}
	f := newFixture(t, adapter)

	if _, err := f.svc.Cancel(context.Background(), "owner-1"); !errors.Is(err, domain.ErrJobNotFound) {
		t.Errorf("Cancel() error = %v, want ErrJobNotFound", err)
	}
}

// =============================================================================
// Playlist Service Tests
// =============================================================================

func playlistInfo(n int) *domain.MediaInfo {
	info := &domain.MediaInfo{Title: "mix"}
	for i := 0; i < n; i++ {
		info.Entries = append(info.Entries, domain.MediaEntry{
			Type:  "url",
			URL:   fmt.Sprintf("https://youtu.be/item%d", i),
			Title: fmt.Sprintf("item %d", i),
		})
	}
	return info
}

func newPlaylistService(t *testing.T, adapter *fakeAdapter) *PlaylistService {
	t.Helper()
	return NewPlaylistService(
		platform.NewResolver([]platform.Adapter{adapter}),
		repository.NewInMemorySessionRepository(),
		repository.NewInMemoryURLRegistry(),
		testDownloadConfig(),
		testLogger(),
	)
}

func TestPlaylistService_BrowseAndPage(t *testing.T) {
	adapter := &fakeAdapter{name: domain.PlatformYouTube, info: playlistInfo(12)}
	svc := newPlaylistService(t, adapter)
	ctx := context.Background()

	page, err := svc.Browse(ctx, "owner-1", "https://youtube.com/playlist?list=x")
	if err != nil {
		t.Fatalf("Browse() error = %v", err)
	}
	if page.TotalItems != 12 || page.TotalPages != 3 {
		t.Errorf("totals = %d items / %d pages, want 12/3", page.TotalItems, page.TotalPages)
	}
	if len(page.Items) != 5 || page.HasPrev || !page.HasNext {
		t.Errorf("first page = %d items, prev=%v next=%v", len(page.Items), page.HasPrev, page.HasNext)
	}

	last, err := svc.Page(ctx, "owner-1", 2)
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	if len(last.Items) != 2 || last.HasNext || !last.HasPrev {
		t.Errorf("last page = %d items, prev=%v next=%v", len(last.Items), last.HasPrev, last.HasNext)
	}

	item, err := svc.Item(ctx, "owner-1", 7)
	if err != nil {
		t.Fatalf("Item() error = %v", err)
	}
	if item.URL != "https://youtu.be/item7" {
		t.Errorf("Item(7) = %q, absolute index must survive pagination", item.URL)
	}

	if _, err := svc.Item(ctx, "owner-1", 12); !errors.Is(err, domain.ErrInvalidPlaylistItem) {
		t.Errorf("Item(12) error = %v, want ErrInvalidPlaylistItem", err)
	}
}

func TestPlaylistService_EmptyPlaylist(t *testing.T) {
	adapter := &fakeAdapter{
		name: domain.PlatformYouTube,
		info: &domain.MediaInfo{
			Title: "broken",
			Entries: []domain.MediaEntry{
				{Type: "playlist", URL: "https://nested", Title: "nested"},
				{Type: "url", URL: "", Title: "no url"},
			},
		},
	}
	svc := newPlaylistService(t, adapter)

	_, err := svc.Browse(context.Background(), "owner-1", "https://youtube.com/playlist?list=x")
	if !errors.Is(err, domain.ErrEmptyPlaylist) {
		t.Errorf("Browse() error = %v, want ErrEmptyPlaylist", err)
	}
}

func TestPlaylistService_SessionReplaced(t *testing.T) {
	adapter := &fakeAdapter{name: domain.PlatformYouTube, info: playlistInfo(3)}
	svc := newPlaylistService(t, adapter)
	ctx := context.Background()

	if _, err := svc.Browse(ctx, "owner-1", "https://youtube.com/playlist?list=a"); err != nil {
		t.Fatalf("Browse() error = %v", err)
	}

	adapter.info = playlistInfo(7)
	page, err := svc.Browse(ctx, "owner-1", "https://youtube.com/playlist?list=b")
	if err != nil {
		t.Fatalf("Browse() error = %v", err)
	}
	if page.TotalItems != 7 {
		t.Errorf("new browse should replace the session, got %d items", page.TotalItems)
	}

	if err := svc.Close(ctx, "owner-1"); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := svc.Page(ctx, "owner-1", 0); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Page() after close error = %v, want ErrSessionNotFound", err)
	}
}

func TestDownloadService_EnqueueBulkEmpty(t *testing.T) {
	adapter := &fakeAdapter{name: domain.PlatformYouTube, info: singleVideoInfo()}
	f := newFixture(t, adapter)

	_, err := f.svc.EnqueueBulk(context.Background(), "owner-1", nil, false)
	if !errors.Is(err, domain.ErrEmptyPlaylist) {
		t.Errorf("EnqueueBulk() error = %v, want ErrEmptyPlaylist", err)
	}
}
