package storage

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
)

func staticContext(t *testing.T, urlPath string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, urlPath, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestStaticServerStreamsFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "2024"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "2024", "x.txt"), []byte("static body"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, rec := staticContext(t, "/2024/x.txt")
	if err := NewStaticServer(root).Serve(c); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "static body" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "public, max-age=31536000" {
		t.Fatalf("unexpected Cache-Control %q", cc)
	}
}

func TestStaticServerMissingIs404(t *testing.T) {
	t.Parallel()

	c, _ := staticContext(t, "/absent.png")
	err := NewStaticServer(t.TempDir()).Serve(c)

	var serveErr *ServeError
	if !errors.As(err, &serveErr) {
		t.Fatalf("expected *ServeError, got %T: %v", err, err)
	}
	if serveErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", serveErr.StatusCode)
	}
	if serveErr.Path != "/absent.png" {
		t.Fatalf("unexpected path %q", serveErr.Path)
	}
}

func TestStaticServerDirectoryIs404(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "gallery"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	c, _ := staticContext(t, "/gallery")
	err := NewStaticServer(root).Serve(c)

	var serveErr *ServeError
	if !errors.As(err, &serveErr) {
		t.Fatalf("expected *ServeError, got %T: %v", err, err)
	}
	if serveErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for directory, got %d", serveErr.StatusCode)
	}
}

func TestStaticServerTraversalStaysUnderRoot(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	root := filepath.Join(base, "root")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// A file just outside the root must not be reachable through "..".
	if err := os.WriteFile(filepath.Join(base, "secret.txt"), []byte("secret"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/secret.txt", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/content/images/*")
	c.SetParamNames("*")
	c.SetParamValues("../secret.txt")

	err := NewStaticServer(root).Serve(c)
	var serveErr *ServeError
	if !errors.As(err, &serveErr) {
		t.Fatalf("expected *ServeError, got %T: %v", err, err)
	}
	if serveErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for traversal attempt, got %d", serveErr.StatusCode)
	}
	if rec.Body.String() == "secret" {
		t.Fatalf("traversal escaped the root")
	}
}

func TestStaticServerBadEscapeIs400(t *testing.T) {
	t.Parallel()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/asset", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/content/images/*")
	c.SetParamNames("*")
	c.SetParamValues("bad%zz.png")

	err := NewStaticServer(t.TempDir()).Serve(c)
	var serveErr *ServeError
	if !errors.As(err, &serveErr) {
		t.Fatalf("expected *ServeError, got %T: %v", err, err)
	}
	if serveErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", serveErr.StatusCode)
	}
}
