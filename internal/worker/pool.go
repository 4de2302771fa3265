package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/iconidentify/mediagrab/internal/domain"
	"github.com/iconidentify/mediagrab/internal/repository"
	"github.com/iconidentify/mediagrab/internal/service"
)

// ErrShutdownTimeout is returned when workers don't stop within timeout.
var ErrShutdownTimeout = errors.New("worker pool shutdown timed out")

// Pool manages a pool of workers for processing download jobs.
type Pool struct {
	workers      int
	pollInterval time.Duration
	jobRepo      repository.JobRepository
	downloadSvc  *service.DownloadService
	logger       *slog.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// Config holds worker pool configuration.
type Config struct {
	Workers      int
	PollInterval time.Duration
}

// NewPool creates a new worker pool.
func NewPool(
	cfg Config,
	jobRepo repository.JobRepository,
	downloadSvc *service.DownloadService,
	logger *slog.Logger,
) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers:      cfg.Workers,
		pollInterval: cfg.PollInterval,
		jobRepo:      jobRepo,
		downloadSvc:  downloadSvc,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start launches all workers.
func (p *Pool) Start() {
	p.logger.Info("starting worker pool", "workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop(timeout time.Duration) error {
	p.logger.Info("stopping worker pool")
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped gracefully")
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	logger := p.logger.With("worker_id", id)
	logger.Info("worker started")

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			logger.Info("worker stopping")
			return
		case <-ticker.C:
			p.processNextJob(logger)
		}
	}
}

func (p *Pool) processNextJob(logger *slog.Logger) {
	job, err := p.jobRepo.Dequeue(p.ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNoJobs) {
			logger.Error("failed to dequeue job", "error", err)
		}
		return
	}

	logger = logger.With("job_id", job.ID, "mode", string(job.Mode))
	logger.Info("processing job")

	job, err = p.jobRepo.Mutate(p.ctx, job.ID, func(j *domain.DownloadJob) {
		j.MarkRunning()
	})
	if err != nil {
		logger.Error("failed to update job status", "error", err)
		return
	}

	err = p.downloadSvc.Process(p.ctx, job)
	if err != nil {
		// Failures are terminal; there is no retry ladder.
		logger.Error("job failed", "error", err)
		if _, updateErr := p.jobRepo.Mutate(p.ctx, job.ID, func(j *domain.DownloadJob) {
			j.MarkFailed(err.Error())
		}); updateErr != nil {
			logger.Error("failed to update job after failure", "error", updateErr)
		}
		return
	}

	// Bulk cancellation transitions the job inside the service; don't
	// overwrite a terminal status reached there.
	job, err = p.jobRepo.Mutate(p.ctx, job.ID, func(j *domain.DownloadJob) {
		if !j.Status.Terminal() {
			j.MarkCompleted()
		}
	})
	if err != nil {
		logger.Error("failed to mark job completed", "error", err)
		return
	}

	logger.Info("job finished", "status", string(job.Status))
}
