package domain

import (
	"time"
)

// JobID is a unique identifier for a download job.
type JobID string

// String returns the string representation of the JobID.
func (id JobID) String() string {
	return string(id)
}

// JobMode distinguishes single-item downloads from bulk playlist downloads.
type JobMode string

const (
	JobModeSingle JobMode = "single"
	JobModeBulk   JobMode = "bulk"
)

// JobStatus represents the current state of a job.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusCancelled JobStatus = "cancelled"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled || s == JobStatusFailed
}

// DownloadJob is one orchestrated download operation tracked per owner.
// State is transient and discarded once the job reaches a terminal status.
// All mutation happens under the job repository's lock.
type DownloadJob struct {
	ID        JobID
	OwnerID   string
	Mode      JobMode
	AudioOnly bool

	// Single mode: the one URL to download. Bulk mode: the playlist items.
	URL   string
	Title string
	Items []PlaylistItem

	Status    JobStatus
	Cancelled bool
	Completed int
	Succeeded int
	Failed    int
	Total     int
	LastError string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSingleJob creates a queued single-item job.
func NewSingleJob(id JobID, ownerID, url, title string, audioOnly bool) *DownloadJob {
	now := time.Now()
	return &DownloadJob{
		ID:        id,
		OwnerID:   ownerID,
		Mode:      JobModeSingle,
		AudioOnly: audioOnly,
		URL:       url,
		Title:     title,
		Status:    JobStatusQueued,
		Total:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewBulkJob creates a queued bulk job over playlist items.
func NewBulkJob(id JobID, ownerID string, items []PlaylistItem, audioOnly bool) *DownloadJob {
	now := time.Now()
	return &DownloadJob{
		ID:        id,
		OwnerID:   ownerID,
		Mode:      JobModeBulk,
		AudioOnly: audioOnly,
		Items:     items,
		Status:    JobStatusQueued,
		Total:     len(items),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkRunning transitions the job from queued to running.
func (j *DownloadJob) MarkRunning() {
	j.Status = JobStatusRunning
	j.UpdatedAt = time.Now()
}

// MarkCompleted transitions the job to completed.
func (j *DownloadJob) MarkCompleted() {
	j.Status = JobStatusCompleted
	j.UpdatedAt = time.Now()
}

// MarkCancelled transitions the job to cancelled. Already-processed items
// stand; the counters are left as they were at the cancellation boundary.
func (j *DownloadJob) MarkCancelled() {
	j.Status = JobStatusCancelled
	j.UpdatedAt = time.Now()
}

// MarkFailed transitions the job to the terminal failed state.
func (j *DownloadJob) MarkFailed(errMsg string) {
	j.Status = JobStatusFailed
	j.LastError = errMsg
	j.UpdatedAt = time.Now()
}

// RecordItem increments progress counters after one bulk item finishes.
func (j *DownloadJob) RecordItem(succeeded bool) {
	j.Completed++
	if succeeded {
		j.Succeeded++
	} else {
		j.Failed++
	}
	j.UpdatedAt = time.Now()
}
