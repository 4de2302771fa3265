package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/spf13/afero"

	"github.com/iconidentify/mediagrab/internal/domain"
)

// sniffLen is how many leading bytes the content-type detector needs.
const sniffLen = 262

// Outbox is a filesystem delivery adapter: each payload lands in the
// owner's directory next to a .json sidecar describing it. A downstream
// dispatcher (or the owner directly) picks files up from there.
type Outbox struct {
	fs      afero.Fs
	baseDir string
	logger  *slog.Logger
}

// sidecar is the metadata file written next to each delivered payload.
type sidecar struct {
	Filename    string          `json:"filename"`
	SizeBytes   int64           `json:"size_bytes"`
	ContentType string          `json:"content_type"`
	Audio       bool            `json:"audio"`
	Platform    domain.Platform `json:"platform"`
	SourceURL   string          `json:"source_url"`
	Title       string          `json:"title,omitempty"`
	DeliveredAt time.Time       `json:"delivered_at"`
}

// NewOutbox creates an outbox rooted at baseDir on the given filesystem.
func NewOutbox(fs afero.Fs, baseDir string, logger *slog.Logger) *Outbox {
	return &Outbox{fs: fs, baseDir: baseDir, logger: logger}
}

// Deliver writes the payload and its sidecar into the owner's directory.
// Names are sanitized upstream but not unique; a second payload with the
// same name gets a numeric suffix instead of overwriting the first.
func (o *Outbox) Deliver(ctx context.Context, ownerID string, content io.Reader, meta Metadata) error {
	dir := filepath.Join(o.baseDir, ownerID)
	if err := o.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create owner dir: %w", err)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(content, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("read payload head: %w", err)
	}
	head = head[:n]

	contentType := detectContentType(head, meta.Filename)

	path := o.uniquePath(filepath.Join(dir, meta.Filename))
	filename := filepath.Base(path)
	f, err := o.fs.Create(path)
	if err != nil {
		return fmt.Errorf("create payload file: %w", err)
	}

	written, err := io.Copy(f, io.MultiReader(bytes.NewReader(head), content))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		o.fs.Remove(path)
		return fmt.Errorf("write payload: %w", err)
	}

	if err := o.writeSidecar(path+".json", sidecar{
		Filename:    filename,
		SizeBytes:   written,
		ContentType: contentType,
		Audio:       meta.Audio,
		Platform:    meta.Platform,
		SourceURL:   meta.SourceURL,
		Title:       meta.Title,
		DeliveredAt: time.Now(),
	}); err != nil {
		return err
	}

	o.logger.Info("payload delivered",
		"owner_id", ownerID,
		"filename", filename,
		"size_bytes", written,
		"content_type", contentType)

	return nil
}

// uniquePath returns path, or the first "name_N.ext" variant that does not
// exist yet in the target directory.
func (o *Outbox) uniquePath(path string) string {
	if exists, _ := afero.Exists(o.fs, path); !exists {
		return path
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if exists, _ := afero.Exists(o.fs, candidate); !exists {
			return candidate
		}
	}
}

func (o *Outbox) writeSidecar(path string, sc sidecar) error {
	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sidecar: %w", err)
	}
	if err := afero.WriteFile(o.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write sidecar: %w", err)
	}
	return nil
}

// detectContentType sniffs the payload head, falling back to the file
// extension when the magic bytes are not recognized.
func detectContentType(head []byte, filename string) string {
	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp4":
		return "video/mp4"
	case ".mp3":
		return "audio/mpeg"
	case ".webm":
		return "video/webm"
	case ".m4a":
		return "audio/mp4"
	default:
		return "application/octet-stream"
	}
}
