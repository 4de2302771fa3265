package repository

import (
	"context"
	"sync"
	"time"

	"github.com/iconidentify/mediagrab/internal/domain"
)

// defaultTerminalRetention is how long a finished job stays queryable
// before it is discarded.
const defaultTerminalRetention = 5 * time.Minute

// InMemoryJobRepository implements JobRepository using in-memory storage.
// The stored jobs are never handed out directly: every accessor returns a
// copy and all writes go through Mutate, so readers on the HTTP status
// path never race against a worker updating progress counters.
type InMemoryJobRepository struct {
	mu        sync.RWMutex
	jobs      map[domain.JobID]*domain.DownloadJob
	byOwner   map[string]domain.JobID       // owner -> non-terminal job
	queue     []domain.JobID                // FIFO queue of queued job IDs
	expiry    map[domain.JobID]time.Time    // terminal job -> eviction time
	retention time.Duration
}

// NewInMemoryJobRepository creates a new in-memory job repository.
func NewInMemoryJobRepository() *InMemoryJobRepository {
	return &InMemoryJobRepository{
		jobs:      make(map[domain.JobID]*domain.DownloadJob),
		byOwner:   make(map[string]domain.JobID),
		queue:     make([]domain.JobID, 0),
		expiry:    make(map[domain.JobID]time.Time),
		retention: defaultTerminalRetention,
	}
}

// copyJob returns a detached copy. The Items slice is shared but is never
// mutated after job construction.
func copyJob(job *domain.DownloadJob) *domain.DownloadJob {
	cp := *job
	return &cp
}

// sweepLocked discards terminal jobs whose retention window has passed.
// Callers must hold the write lock.
func (r *InMemoryJobRepository) sweepLocked(now time.Time) {
	for id, deadline := range r.expiry {
		if now.After(deadline) {
			delete(r.jobs, id)
			delete(r.expiry, id)
		}
	}
}

// Enqueue adds a queued job, rejecting a second active job per owner. The
// repository stores its own copy; the caller's pointer stays private.
func (r *InMemoryJobRepository) Enqueue(ctx context.Context, job *domain.DownloadJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked(time.Now())

	if existingID, ok := r.byOwner[job.OwnerID]; ok {
		if existing, found := r.jobs[existingID]; found && !existing.Status.Terminal() {
			return domain.ErrJobAlreadyInProgress
		}
	}

	r.jobs[job.ID] = copyJob(job)
	r.byOwner[job.OwnerID] = job.ID
	r.queue = append(r.queue, job.ID)

	return nil
}

// Dequeue retrieves the next queued job (FIFO).
func (r *InMemoryJobRepository) Dequeue(ctx context.Context) (*domain.DownloadJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked(time.Now())

	for i, jobID := range r.queue {
		job, ok := r.jobs[jobID]
		if !ok {
			continue
		}

		if job.Status == domain.JobStatusQueued {
			r.queue = append(r.queue[:i], r.queue[i+1:]...)
			return copyJob(job), nil
		}
	}

	return nil, domain.ErrNoJobs
}

// Mutate applies fn to the stored job under the lock and returns a copy of
// the result. Jobs reaching a terminal state release the owner's slot and
// start their retention countdown.
func (r *InMemoryJobRepository) Mutate(ctx context.Context, id domain.JobID, fn func(*domain.DownloadJob)) (*domain.DownloadJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}

	fn(job)

	if job.Status.Terminal() {
		if activeID, ok := r.byOwner[job.OwnerID]; ok && activeID == job.ID {
			delete(r.byOwner, job.OwnerID)
		}
		if _, ok := r.expiry[job.ID]; !ok {
			r.expiry[job.ID] = time.Now().Add(r.retention)
		}
	}

	return copyJob(job), nil
}

// Get retrieves a copy of a job by ID.
func (r *InMemoryJobRepository) Get(ctx context.Context, id domain.JobID) (*domain.DownloadJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return copyJob(job), nil
}

// ActiveForOwner returns a copy of the owner's non-terminal job, if any.
func (r *InMemoryJobRepository) ActiveForOwner(ctx context.Context, ownerID string) (*domain.DownloadJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobID, ok := r.byOwner[ownerID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	job, found := r.jobs[jobID]
	if !found || job.Status.Terminal() {
		return nil, domain.ErrJobNotFound
	}
	return copyJob(job), nil
}

// RequestCancel flags the owner's active job for cooperative cancellation.
// The job keeps running until the worker observes the flag at the next
// item boundary.
func (r *InMemoryJobRepository) RequestCancel(ctx context.Context, ownerID string) (domain.JobID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	jobID, ok := r.byOwner[ownerID]
	if !ok {
		return "", domain.ErrJobNotFound
	}
	job, found := r.jobs[jobID]
	if !found || job.Status.Terminal() {
		return "", domain.ErrJobNotFound
	}

	job.Cancelled = true
	return jobID, nil
}

// CancelRequested reports whether cancellation was requested for a job.
func (r *InMemoryJobRepository) CancelRequested(ctx context.Context, id domain.JobID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return false, domain.ErrJobNotFound
	}
	return job.Cancelled, nil
}

// Stats returns queue statistics.
func (r *InMemoryJobRepository) Stats(ctx context.Context) (*QueueStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &QueueStats{}
	for _, job := range r.jobs {
		switch job.Status {
		case domain.JobStatusQueued:
			stats.Queued++
		case domain.JobStatusRunning:
			stats.Running++
		case domain.JobStatusCompleted:
			stats.Completed++
		case domain.JobStatusCancelled:
			stats.Cancelled++
		case domain.JobStatusFailed:
			stats.Failed++
		}
	}

	return stats, nil
}

// Clear removes all jobs (useful for testing).
func (r *InMemoryJobRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.jobs = make(map[domain.JobID]*domain.DownloadJob)
	r.byOwner = make(map[string]domain.JobID)
	r.queue = make([]domain.JobID, 0)
	r.expiry = make(map[domain.JobID]time.Time)
}
