package assetstore

import (
	"context"
	"io"
)

// PublishedAsset is the asset store's receipt for an uploaded model file.
// AssetID is the opaque handle used to retract or fetch the asset later.
type PublishedAsset struct {
	URL     string
	AssetID string
	Size    int64
}

// Store abstracts the external object storage service holding model files.
type Store interface {
	// Publish uploads the file at localPath under the application namespace
	// and returns its public URL and deletion handle.
	Publish(ctx context.Context, localPath, filename, contentType string) (*PublishedAsset, error)

	// Retract requests deletion of a previously published asset.
	Retract(ctx context.Context, assetID string) error

	// Fetch opens the stored asset content for streaming.
	Fetch(ctx context.Context, assetID string) (io.ReadCloser, error)
}
