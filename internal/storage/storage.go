package storage

import (
	"context"
	"io"
)

// SnapshotStore defines the interface for catalog snapshot storage. A
// snapshot is a JSON document holding the full movement catalog, used for
// seeding and export.
type SnapshotStore interface {
	// Download fetches the snapshot object. The caller must close the reader.
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Upload stores a snapshot object, replacing any existing one.
	Upload(ctx context.Context, objectKey string, body io.Reader, contentType string) error
}
