package domain

// Platform identifies a supported media source.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformSnapchat  Platform = "snapchat"
	PlatformPinterest Platform = "pinterest"
)

// String returns the string representation of the Platform.
func (p Platform) String() string {
	return string(p)
}

// MediaInfo is the metadata bag produced by adapter extraction. It is owned
// by the request that produced it and never persisted.
type MediaInfo struct {
	Platform Platform
	URL      string
	Title    string
	Duration *float64 // seconds
	Formats  []Format
	Entries  []MediaEntry
}

// IsPlaylist reports whether the extraction yielded a collection rather
// than a single downloadable item.
func (i *MediaInfo) IsPlaylist() bool {
	return len(i.Entries) > 0
}

// MediaEntry is one raw entry of a collection as reported by the extractor.
// Entries may be nested playlist placeholders or otherwise malformed; the
// paginator filters them down to leaf items.
type MediaEntry struct {
	Type     string // "", "video" or "url" for leaf entries
	URL      string
	Title    string
	Duration *float64
}

// Format describes one downloadable representation of a media item.
type Format struct {
	ID          string
	HasVideo    bool
	HasAudio    bool
	SizeBytes   *int64   // nil when the source does not report a size
	BitrateKbps *float64 // total bitrate, used for size estimation
	Container   string
}
