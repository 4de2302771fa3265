// Package delivery ships finished downloads to their owner. The transport
// behind the adapter is interchangeable; the orchestrator only hands over
// a payload stream and its metadata.
package delivery

import (
	"context"
	"io"

	"github.com/iconidentify/mediagrab/internal/domain"
)

// Metadata describes a payload being delivered.
type Metadata struct {
	Filename  string
	SizeBytes int64
	Audio     bool
	Platform  domain.Platform
	SourceURL string
	Title     string
}

// Adapter delivers one payload to an owner.
type Adapter interface {
	Deliver(ctx context.Context, ownerID string, content io.Reader, meta Metadata) error
}
