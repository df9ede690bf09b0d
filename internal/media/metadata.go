package media

import (
	"context"
	"io"
)

// Metadata captures the media details extracted from an uploaded file.
type Metadata struct {
	DurationSeconds float64
}

// Prober extracts metadata from a media file on local disk.
type Prober interface {
	Probe(ctx context.Context, path string) (Metadata, error)
}

// Store persists media objects and resolves them back to public URLs.
// Delete is best-effort: implementations derive the object key from the
// public URL and treat unparseable URLs as a logged no-op.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}
