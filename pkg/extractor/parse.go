package extractor

import (
	"encoding/json"
	"fmt"
)

// Info is the normalized result of a metadata extraction. Exactly one of
// Formats or Entries is populated depending on whether the URL resolved to
// a single item or a collection.
type Info struct {
	URL      string
	Type     string
	Title    string
	Duration *float64
	Formats  []FormatInfo
	Entries  []EntryInfo
}

// IsPlaylist reports whether the extraction produced a collection.
func (i *Info) IsPlaylist() bool {
	return i.Type == "playlist" || i.Type == "multi_video" || len(i.Entries) > 0
}

// FormatInfo is one downloadable rendition of a single item.
type FormatInfo struct {
	ID          string
	HasVideo    bool
	HasAudio    bool
	SizeBytes   *int64
	BitrateKbps *float64
	Container   string
}

// EntryInfo is one member of a collection as reported by a shallow listing.
type EntryInfo struct {
	Type     string
	URL      string
	Title    string
	Duration *float64
}

// rawInfo mirrors the subset of yt-dlp's single-json output we consume.
type rawInfo struct {
	Type     string      `json:"_type"`
	Title    string      `json:"title"`
	Duration *float64    `json:"duration"`
	Formats  []rawFormat `json:"formats"`
	Entries  []rawEntry  `json:"entries"`
}

type rawFormat struct {
	FormatID       string   `json:"format_id"`
	VCodec         string   `json:"vcodec"`
	ACodec         string   `json:"acodec"`
	Filesize       *int64   `json:"filesize"`
	FilesizeApprox *int64   `json:"filesize_approx"`
	TBR            *float64 `json:"tbr"`
	Ext            string   `json:"ext"`
}

type rawEntry struct {
	Type     string   `json:"_type"`
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Duration *float64 `json:"duration"`
}

// ParseInfo decodes yt-dlp single-json output into a normalized Info.
func ParseInfo(data []byte) (*Info, error) {
	var raw rawInfo
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode yt-dlp output: %w", err)
	}

	info := &Info{
		Type:     raw.Type,
		Title:    raw.Title,
		Duration: raw.Duration,
	}

	for _, f := range raw.Formats {
		size := f.Filesize
		if size == nil {
			size = f.FilesizeApprox
		}
		info.Formats = append(info.Formats, FormatInfo{
			ID:          f.FormatID,
			HasVideo:    f.VCodec != "" && f.VCodec != "none",
			HasAudio:    f.ACodec != "" && f.ACodec != "none",
			SizeBytes:   size,
			BitrateKbps: f.TBR,
			Container:   f.Ext,
		})
	}

	for _, e := range raw.Entries {
		info.Entries = append(info.Entries, EntryInfo{
			Type:     e.Type,
			URL:      e.URL,
			Title:    e.Title,
			Duration: e.Duration,
		})
	}

	return info, nil
}
