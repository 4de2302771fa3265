package domain

import "errors"

// Domain errors.
var (
	// ErrUnsupportedSource is returned when no adapter claims a URL.
	// This is an expected outcome for unknown sites, not a fault.
	ErrUnsupportedSource = errors.New("unsupported source")

	// ErrExtractionFailed is returned when the backend extractor cannot
	// produce metadata for a URL.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrNoFormatWithinBudget is returned when no video format fits the
	// payload budget. Callers should offer the audio-only fallback.
	ErrNoFormatWithinBudget = errors.New("no format within size budget")

	// ErrDownloadFailed is returned when the media download fails.
	ErrDownloadFailed = errors.New("download failed")

	// ErrCompressionFailed is returned when the re-encode fallback fails.
	ErrCompressionFailed = errors.New("compression failed")

	// ErrPayloadTooLarge is returned when the payload still exceeds the
	// budget after the single compression pass.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrStaleReference is returned when a URL token has no registry entry.
	ErrStaleReference = errors.New("stale URL reference")

	// ErrJobAlreadyInProgress is returned when an owner starts a second
	// bulk job while one is still active.
	ErrJobAlreadyInProgress = errors.New("download job already in progress")

	// ErrInvalidPlaylistItem is returned when an item index does not exist
	// in the owner's playlist session.
	ErrInvalidPlaylistItem = errors.New("invalid playlist item")

	// ErrIsPlaylist is returned when a single-item download resolves to a
	// collection. Callers should switch to the playlist flow.
	ErrIsPlaylist = errors.New("url resolves to a playlist")

	// ErrJobNotFound is returned when a job cannot be found.
	ErrJobNotFound = errors.New("job not found")

	// ErrNoJobs is returned when there are no jobs to process.
	ErrNoJobs = errors.New("no jobs available")

	// ErrSessionNotFound is returned when an owner has no playlist session.
	ErrSessionNotFound = errors.New("playlist session not found")

	// ErrEmptyPlaylist is returned when a playlist has no usable items.
	ErrEmptyPlaylist = errors.New("playlist has no downloadable items")
)

// PlatformError wraps an error with the originating platform and operation.
type PlatformError struct {
	Platform Platform
	Op       string
	Err      error
}

func (e *PlatformError) Error() string {
	if e.Platform != "" {
		return e.Op + " [" + string(e.Platform) + "]: " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// NewPlatformError creates a new PlatformError.
func NewPlatformError(platform Platform, op string, err error) *PlatformError {
	return &PlatformError{
		Platform: platform,
		Op:       op,
		Err:      err,
	}
}
