// Package platform defines the uniform adapter contract for supported media
// platforms and the resolver that maps URLs onto adapters.
package platform

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/iconidentify/mediagrab/internal/domain"
	"github.com/iconidentify/mediagrab/pkg/extractor"
)

// defaultFormatSelector is the fallback selection expression when the
// caller has not pinned a specific format: best 480p-capped video with
// audio, degrading to whatever is available.
const defaultFormatSelector = "bestvideo[height<=480]+bestaudio/best[height<=480]/best"

// ExtractOptions tune a metadata extraction.
type ExtractOptions struct {
	// FlatPlaylist requests a shallow listing of collection entries.
	FlatPlaylist bool
	// NoPlaylist forces single-item extraction for ambiguous URLs.
	NoPlaylist bool
}

// DownloadRequest describes one media fetch through an adapter.
type DownloadRequest struct {
	URL       string
	FormatID  string
	AudioOnly bool
	WorkDir   string
}

// Adapter is the uniform contract every supported platform implements.
// Callers never branch on the concrete platform; they resolve an adapter
// and use it through this interface.
type Adapter interface {
	// Name identifies the platform.
	Name() domain.Platform

	// CanHandle reports whether this adapter recognizes the URL.
	CanHandle(rawURL string) bool

	// Extract fetches metadata for the URL without downloading media.
	Extract(ctx context.Context, rawURL string, opts ExtractOptions) (*domain.MediaInfo, error)

	// Download fetches one media item and returns the local file path.
	Download(ctx context.Context, req DownloadRequest) (string, error)
}

// ytdlpAdapter is the shared adapter implementation. Platforms differ only
// in their name, the domains they claim, and their cookie jar.
type ytdlpAdapter struct {
	name    domain.Platform
	domains []string
	client  *extractor.Client
	cookies string
	logger  *slog.Logger
}

func newAdapter(name domain.Platform, domains []string, client *extractor.Client, cookiesDir string, logger *slog.Logger) *ytdlpAdapter {
	return &ytdlpAdapter{
		name:    name,
		domains: domains,
		client:  client,
		cookies: cookiesPath(cookiesDir, name),
		logger:  logger.With("platform", string(name)),
	}
}

// cookiesPath returns the platform's cookie jar path, or "" when the file
// does not exist.
func cookiesPath(dir string, name domain.Platform) string {
	if dir == "" {
		return ""
	}
	path := filepath.Join(dir, string(name)+"_cookies.txt")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func (a *ytdlpAdapter) Name() domain.Platform {
	return a.name
}

// CanHandle matches claimed domains as substrings of the URL, which also
// covers shortener hosts like youtu.be and pin.it.
func (a *ytdlpAdapter) CanHandle(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, d := range a.domains {
		if strings.Contains(lower, d) {
			return true
		}
	}
	return false
}

func (a *ytdlpAdapter) Extract(ctx context.Context, rawURL string, opts ExtractOptions) (*domain.MediaInfo, error) {
	info, err := a.client.ExtractInfo(ctx, rawURL, extractor.Options{
		CookiesFile:  a.cookies,
		FlatPlaylist: opts.FlatPlaylist,
		NoPlaylist:   opts.NoPlaylist,
	})
	if err != nil {
		return nil, domain.NewPlatformError(a.name, "extract", domain.ErrExtractionFailed)
	}
	return toMediaInfo(a.name, info), nil
}

func (a *ytdlpAdapter) Download(ctx context.Context, req DownloadRequest) (string, error) {
	formatID := req.FormatID
	if formatID == "" && !req.AudioOnly {
		formatID = defaultFormatSelector
	}

	path, err := a.client.Download(ctx, extractor.DownloadRequest{
		URL:         req.URL,
		FormatID:    formatID,
		CookiesFile: a.cookies,
		AudioOnly:   req.AudioOnly,
		WorkDir:     req.WorkDir,
	})
	if err != nil {
		a.logger.Warn("download failed", "url", req.URL, "error", err)
		return "", domain.NewPlatformError(a.name, "download", domain.ErrDownloadFailed)
	}
	return path, nil
}

// toMediaInfo converts extractor output into the domain model and stamps
// the owning platform.
func toMediaInfo(name domain.Platform, info *extractor.Info) *domain.MediaInfo {
	out := &domain.MediaInfo{
		Platform: name,
		URL:      info.URL,
		Title:    info.Title,
		Duration: info.Duration,
	}

	for _, f := range info.Formats {
		out.Formats = append(out.Formats, domain.Format{
			ID:          f.ID,
			HasVideo:    f.HasVideo,
			HasAudio:    f.HasAudio,
			SizeBytes:   f.SizeBytes,
			BitrateKbps: f.BitrateKbps,
			Container:   f.Container,
		})
	}

	for _, e := range info.Entries {
		out.Entries = append(out.Entries, domain.MediaEntry{
			Type:     e.Type,
			URL:      e.URL,
			Title:    e.Title,
			Duration: e.Duration,
		})
	}

	return out
}
