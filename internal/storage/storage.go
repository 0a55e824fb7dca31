// Package storage defines the adapter contract for image storage backends
// and provides the local-filesystem implementation.
package storage

import (
	"context"

	"github.com/labstack/echo/v4"
)

// StaticImagesURLPrefix is the fixed URL segment under which stored images
// are publicly addressable, regardless of backend.
const StaticImagesURLPrefix = "content/images"

// Image describes an uploaded image pending storage. Path points at a spool
// file holding the uploaded bytes; Name is the client-supplied filename the
// stored asset is named after.
type Image struct {
	Name string
	Path string
}

// ReadOptions selects the asset to read. Path is relative to the backend's
// storage root; trailing slashes and backslashes are ignored.
type ReadOptions struct {
	Path string
}

// Adapter abstracts an image storage backend. Implementations persist
// uploaded assets, expose them by public URL, and serve them over HTTP, so
// the hosting application can swap backends transparently.
type Adapter interface {
	// Save copies the image's bytes into targetDir under a collision-free
	// filename and returns the public URL. An empty targetDir selects the
	// dated default directory. The source file is never moved or mutated.
	Save(ctx context.Context, image Image, targetDir string) (string, error)
	// SaveRaw writes data verbatim to the given root-relative path,
	// creating intermediate directories and overwriting any existing file
	// at that exact path, and returns the public URL.
	SaveRaw(ctx context.Context, data []byte, relPath string) (string, error)
	// Read returns the raw bytes of the asset at opts.Path.
	Read(ctx context.Context, opts ReadOptions) ([]byte, error)
	// Exists reports whether fileName is present in targetDir (the storage
	// root when targetDir is empty). Any stat failure reads as absent.
	Exists(ctx context.Context, fileName, targetDir string) bool
	// Serve returns middleware that streams stored assets for HTTP
	// requests and translates serving failures into storage errors.
	Serve() echo.MiddlewareFunc
	// Delete removes a stored asset. No current backend supports it.
	Delete(ctx context.Context, fileName, targetDir string) error
	// URL builds the public URL for a root-relative asset path.
	URL(relPath string) string
}
