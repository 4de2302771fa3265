// Package extractor wraps the yt-dlp binary for media metadata extraction
// and media retrieval. It is deliberately platform-agnostic; per-platform
// behavior (cookies, format selectors) is supplied by the caller.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/lrstanley/go-ytdlp"
)

// Options tune a single extractor invocation.
type Options struct {
	// CookiesFile is an optional Netscape-format cookies file path. Empty
	// means no cookies are passed.
	CookiesFile string

	// FlatPlaylist requests shallow playlist listing: entries carry URLs
	// and titles but no per-entry format lists.
	FlatPlaylist bool

	// NoPlaylist restricts extraction to the single video even when the
	// URL also references a playlist.
	NoPlaylist bool
}

// DownloadRequest describes one media fetch into a working directory.
type DownloadRequest struct {
	URL         string
	FormatID    string
	CookiesFile string
	AudioOnly   bool
	WorkDir     string
}

// Client shells out to yt-dlp. The zero value is not usable; construct
// with New.
type Client struct {
	logger *slog.Logger
}

// New creates an extractor client.
func New(logger *slog.Logger) *Client {
	return &Client{logger: logger}
}

// ExtractInfo fetches metadata for a URL without downloading any media.
// The returned Info distinguishes single items from collections via
// IsPlaylist.
func (c *Client) ExtractInfo(ctx context.Context, url string, opts Options) (*Info, error) {
	cmd := ytdlp.New().
		Quiet().
		SkipDownload().
		DumpSingleJSON()

	if opts.FlatPlaylist {
		cmd = cmd.FlatPlaylist()
	}
	if opts.NoPlaylist {
		cmd = cmd.NoPlaylist()
	}
	if opts.CookiesFile != "" {
		cmd = cmd.Cookies(opts.CookiesFile)
	}

	result, err := cmd.Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("extract info for %s: %w", url, err)
	}

	info, err := ParseInfo([]byte(result.Stdout))
	if err != nil {
		return nil, fmt.Errorf("parse info for %s: %w", url, err)
	}
	info.URL = url

	c.logger.Debug("extracted media info",
		"url", url,
		"title", info.Title,
		"formats", len(info.Formats),
		"entries", len(info.Entries))

	return info, nil
}

// Download fetches one media item into req.WorkDir and returns the path of
// the downloaded file. The output template is prefixed with a random token
// so concurrent downloads into the same directory never collide.
func (c *Client) Download(ctx context.Context, req DownloadRequest) (string, error) {
	prefix := uuid.New().String()[:8]
	outTmpl := filepath.Join(req.WorkDir, prefix+"_%(id)s.%(ext)s")

	cmd := ytdlp.New().
		Quiet().
		NoPlaylist().
		Output(outTmpl)

	if req.CookiesFile != "" {
		cmd = cmd.Cookies(req.CookiesFile)
	}

	if req.AudioOnly {
		cmd = cmd.ExtractAudio().AudioFormat("mp3")
	} else {
		if req.FormatID != "" {
			cmd = cmd.Format(req.FormatID)
		}
		cmd = cmd.MergeOutputFormat("mp4")
	}

	if _, err := cmd.Run(ctx, req.URL); err != nil {
		return "", fmt.Errorf("download %s: %w", req.URL, err)
	}

	path, err := findOutput(req.WorkDir, prefix)
	if err != nil {
		return "", fmt.Errorf("locate download for %s: %w", req.URL, err)
	}

	c.logger.Debug("downloaded media", "url", req.URL, "path", path)
	return path, nil
}

// findOutput locates the file yt-dlp produced for the given prefix. The
// final extension depends on post-processing, so the template alone does
// not predict the exact name.
func findOutput(dir, prefix string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"_*"))
	if err != nil {
		return "", err
	}
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil || fi.IsDir() {
			continue
		}
		// Skip partial and intermediate files left by the downloader.
		switch filepath.Ext(m) {
		case ".part", ".ytdl", ".temp":
			continue
		}
		return m, nil
	}
	return "", fmt.Errorf("no output file with prefix %s in %s", prefix, dir)
}
