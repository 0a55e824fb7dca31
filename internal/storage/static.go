package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
)

// OneYear is the cache lifetime attached to every served asset.
const OneYear = 365 * 24 * time.Hour

// FileServer is the narrow contract of the static-file-serving primitive the
// adapter delegates streaming to. Serve either streams the asset matching
// the request and returns nil, or returns a *ServeError; it never falls
// through to another handler on a miss.
type FileServer interface {
	Serve(c echo.Context) error
}

// ServeError reports a failed static-file request with an HTTP-shaped status
// code callers classify on, and the path that failed to resolve.
type ServeError struct {
	StatusCode int
	Path       string
	Err        error
}

func (e *ServeError) Error() string {
	return fmt.Sprintf("serve %s: status %d", e.Path, e.StatusCode)
}

func (e *ServeError) Unwrap() error { return e.Err }

// staticServer streams files below a fixed root with a one-year cache
// lifetime. Range requests and conditional gets are handled by
// http.ServeContent.
type staticServer struct {
	root   string
	maxAge time.Duration
}

// NewStaticServer returns the default FileServer rooted at the given
// directory.
func NewStaticServer(root string) FileServer {
	return &staticServer{root: root, maxAge: OneYear}
}

func (s *staticServer) Serve(c echo.Context) error {
	p := c.Request().URL.Path
	if strings.HasSuffix(c.Path(), "*") {
		// Mounted under a wildcard route: only the suffix addresses the asset.
		p = c.Param("*")
	}
	p, err := url.PathUnescape(p)
	if err != nil {
		return &ServeError{StatusCode: http.StatusBadRequest, Path: p, Err: err}
	}
	// Rooting the cleaned path keeps ".." sequences from escaping the root.
	rel := filepath.Clean("/" + filepath.FromSlash(p))
	name := filepath.Join(s.root, rel)

	f, err := os.Open(name)
	if err != nil {
		return &ServeError{StatusCode: statusFromFSError(err), Path: p, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return &ServeError{StatusCode: statusFromFSError(err), Path: p, Err: err}
	}
	if info.IsDir() {
		// No directory listings or index files: a directory hit is a miss.
		return &ServeError{StatusCode: http.StatusNotFound, Path: p}
	}

	c.Response().Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int64(s.maxAge.Seconds())))
	http.ServeContent(c.Response(), c.Request(), info.Name(), info.ModTime(), f)
	return nil
}

func statusFromFSError(err error) int {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		return http.StatusNotFound
	case errors.Is(err, fs.ErrPermission):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
