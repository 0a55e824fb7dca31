package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// LocalConfig configures a LocalAdapter.
type LocalConfig struct {
	// Root is the directory all assets live under. It is resolved to an
	// absolute path and created (with parents) at construction.
	Root string
	// URLSubdir optionally prefixes public URLs when the hosting
	// application is mounted below the domain root.
	URLSubdir string
	// Server overrides the static-file-serving primitive. Defaults to
	// NewStaticServer(Root).
	Server FileServer
}

// LocalAdapter persists images on the local filesystem and serves them over
// HTTP. Every operation is confined to paths joined below the root fixed at
// construction; independently rooted adapters can coexist in one process.
type LocalAdapter struct {
	root   string
	subdir string
	server FileServer
	logger *slog.Logger
}

// NewLocal constructs a LocalAdapter from cfg.
func NewLocal(log *slog.Logger, cfg LocalConfig) (*LocalAdapter, error) {
	if strings.TrimSpace(cfg.Root) == "" {
		return nil, errors.New("storage root is required")
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("ensure storage root: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	server := cfg.Server
	if server == nil {
		server = NewStaticServer(root)
	}
	return &LocalAdapter{
		root:   root,
		subdir: strings.Trim(cfg.URLSubdir, "/"),
		server: server,
		logger: log.With(slog.String("service", "storage")),
	}, nil
}

// Root returns the absolute directory all assets live under.
func (a *LocalAdapter) Root() string { return a.root }

// Save copies the image's bytes into targetDir (the dated default directory
// when empty) under a collision-free filename and returns the public URL.
// The source file is read, never moved or deleted.
func (a *LocalAdapter) Save(ctx context.Context, image Image, targetDir string) (string, error) {
	if targetDir == "" {
		targetDir = TargetDir(a.root)
	}
	dest := UniqueFileName(ctx, image, targetDir, a.Exists)

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("create target directory: %w", err)
	}
	if err := copyFile(image.Path, dest); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}

	rel, err := filepath.Rel(a.root, dest)
	if err != nil {
		return "", fmt.Errorf("relativize stored path: %w", err)
	}
	return a.URL(rel), nil
}

// SaveRaw writes data to the root-relative path, creating intermediate
// directories and overwriting any file already at that exact path. Callers
// wanting collision-free names resolve them before calling.
func (a *LocalAdapter) SaveRaw(ctx context.Context, data []byte, relPath string) (string, error) {
	target := filepath.Join(a.root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create target directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return a.URL(relPath), nil
}

// Read returns the raw bytes of the asset at opts.Path, re-read from disk on
// every call. Failures are classified into the storage error taxonomy.
func (a *LocalAdapter) Read(ctx context.Context, opts ReadOptions) ([]byte, error) {
	rel := strings.TrimRight(opts.Path, `/\`)
	target := filepath.Join(a.root, filepath.FromSlash(rel))
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, classifyReadError(err, rel)
	}
	return data, nil
}

// Exists reports whether fileName is present in targetDir, defaulting to the
// storage root. Every stat failure, permission errors included, reads as
// absent so filename-uniqueness probing can proceed optimistically.
func (a *LocalAdapter) Exists(_ context.Context, fileName, targetDir string) bool {
	if targetDir == "" {
		targetDir = a.root
	}
	_, err := os.Stat(filepath.Join(targetDir, fileName))
	return err == nil
}

// Serve returns middleware that delegates streaming to the static-file
// primitive, logs the request path and elapsed milliseconds, and maps
// serving failures onto the storage error taxonomy. On success the request
// continues down the chain; the asset has already been streamed.
func (a *LocalAdapter) Serve() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := a.server.Serve(c)
			a.logger.Info("serve image",
				slog.String("path", c.Request().URL.Path),
				slog.Int64("elapsed_ms", time.Since(start).Milliseconds()),
			)
			if err == nil {
				return next(c)
			}

			var se *ServeError
			if !errors.As(err, &se) {
				return &GenericStorageError{Message: "cannot serve image", Err: err}
			}
			switch se.StatusCode {
			case http.StatusNotFound:
				return &NotFoundError{Path: se.Path, Err: se}
			case http.StatusBadRequest:
				return &BadRequestError{Path: se.Path, Err: se}
			case http.StatusForbidden:
				return &NoPermissionError{Path: se.Path, Err: se}
			default:
				return &GenericStorageError{
					Message: fmt.Sprintf("cannot serve image: %s", se.Path),
					Path:    se.Path,
					Err:     se,
				}
			}
		}
	}
}

// Delete is deliberately unsupported: stored assets are immutable and new
// uploads always receive fresh names. Always returns ErrNotImplemented and
// never touches the filesystem.
func (a *LocalAdapter) Delete(_ context.Context, _, _ string) error {
	return ErrNotImplemented
}

// URL builds the public URL for a root-relative asset path: a leading slash,
// the optional application subdirectory, the static image prefix, then the
// path, with every host-native path separator rewritten to "/".
func (a *LocalAdapter) URL(relPath string) string {
	return strings.ReplaceAll(urlJoin(a.subdir, StaticImagesURLPrefix, relPath), string(filepath.Separator), "/")
}

// urlJoin joins the non-empty segments with single slashes under a leading
// slash.
func urlJoin(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = strings.Trim(s, "/"); s != "" {
			parts = append(parts, s)
		}
	}
	return "/" + strings.Join(parts, "/")
}

// copyFile copies src to dst, truncating dst if it already exists. The
// source is left untouched.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy bytes: %w", err)
	}
	return nil
}
