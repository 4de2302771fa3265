package domain

import "time"

// DownloadOutcome is the recorded result of one download attempt.
type DownloadOutcome string

const (
	OutcomeDelivered DownloadOutcome = "delivered"
	OutcomeFailed    DownloadOutcome = "failed"
)

// DownloadRecord is the bookkeeping row written after each download
// attempt, successful or not.
type DownloadRecord struct {
	ID        string
	OwnerID   string
	URL       string
	Platform  Platform
	Filename  string
	SizeBytes int64
	AudioOnly bool
	Outcome   DownloadOutcome
	Error     string
	CreatedAt time.Time
}
