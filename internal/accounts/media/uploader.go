package media

import (
	"context"
	"io"
)

// Uploader stores user media (avatars, cover images) and returns a public
// URL for the stored object.
type Uploader interface {
	// Upload stores the object under key and returns its public URL.
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)

	// Remove deletes a previously uploaded object. Unknown keys are not
	// an error.
	Remove(ctx context.Context, key string) error
}
