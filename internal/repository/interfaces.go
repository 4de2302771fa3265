package repository

import (
	"context"

	"github.com/iconidentify/mediagrab/internal/domain"
)

// URLRegistry maps long source URLs to short stable tokens so downstream
// references (callbacks, API paths) stay within tight length limits.
type URLRegistry interface {
	// Register stores the URL and returns its token. Registering the same
	// URL again returns the same token.
	Register(ctx context.Context, rawURL string) (string, error)

	// Lookup resolves a token back to its URL.
	Lookup(ctx context.Context, token string) (string, error)
}

// SessionRepository stores playlist browse sessions, one per owner.
type SessionRepository interface {
	// Put stores the session, replacing any existing session of the owner.
	Put(ctx context.Context, session *domain.PlaylistSession) error

	// Get retrieves the owner's current session.
	Get(ctx context.Context, ownerID string) (*domain.PlaylistSession, error)

	// Delete removes the owner's session.
	Delete(ctx context.Context, ownerID string) error
}

// JobRepository manages the download job queue. The repository owns all
// job state: callers receive copies and commit changes through Mutate, so
// progress updates never race against status reads.
type JobRepository interface {
	// Enqueue adds a queued job. An owner may have at most one
	// non-terminal job at a time.
	Enqueue(ctx context.Context, job *domain.DownloadJob) error

	// Dequeue retrieves the next queued job (FIFO).
	Dequeue(ctx context.Context) (*domain.DownloadJob, error)

	// Mutate applies fn to the stored job under the repository lock and
	// returns a copy of the result.
	Mutate(ctx context.Context, id domain.JobID, fn func(*domain.DownloadJob)) (*domain.DownloadJob, error)

	// Get retrieves a job by ID.
	Get(ctx context.Context, id domain.JobID) (*domain.DownloadJob, error)

	// ActiveForOwner returns the owner's non-terminal job, if any.
	ActiveForOwner(ctx context.Context, ownerID string) (*domain.DownloadJob, error)

	// RequestCancel flags the owner's active job for cooperative
	// cancellation and returns its ID.
	RequestCancel(ctx context.Context, ownerID string) (domain.JobID, error)

	// CancelRequested reports whether cancellation was requested for a job.
	CancelRequested(ctx context.Context, id domain.JobID) (bool, error)

	// Stats returns queue statistics.
	Stats(ctx context.Context) (*QueueStats, error)
}

// HistoryRepository persists per-owner download outcomes.
type HistoryRepository interface {
	// Record appends one download outcome.
	Record(ctx context.Context, rec *domain.DownloadRecord) error

	// ListByOwner returns the owner's most recent records, newest first.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.DownloadRecord, error)

	// Close releases the underlying store.
	Close() error
}

// QueueStats contains job queue statistics.
type QueueStats struct {
	Queued    int
	Running   int
	Completed int
	Cancelled int
	Failed    int
}
