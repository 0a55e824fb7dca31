package handlers

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/imagevault/imagevault/internal/storage"
)

// ImagesHandler exposes the storage adapter over HTTP: uploads, raw
// saves/reads, delete, and the public serving mount.
type ImagesHandler struct {
	adapter storage.Adapter
	logger  *slog.Logger
}

// NewImagesHandler creates an images handler backed by the given adapter.
func NewImagesHandler(log *slog.Logger, adapter storage.Adapter) *ImagesHandler {
	return &ImagesHandler{
		adapter: adapter,
		logger:  log.With(slog.String("handler", "images")),
	}
}

// Register mounts the image API routes and the public serving prefix.
func (h *ImagesHandler) Register(e *echo.Echo) {
	e.POST("/api/images", h.Upload)
	e.POST("/api/images/raw", h.SaveRaw)
	e.GET("/api/images/raw/*", h.ReadRaw)
	e.DELETE("/api/images/*", h.Delete)

	// Public serving mount: the adapter middleware streams the asset, the
	// terminal handler is a no-op because success has already been written.
	serve := e.Group(h.adapter.URL(""))
	serve.Use(h.adapter.Serve())
	serve.GET("/*", func(echo.Context) error { return nil })
}

// Upload godoc
// @Summary Upload an image
// @Description Stores the multipart "file" field under a dated directory with a collision-free name.
// @Tags images
// @Accept multipart/form-data
// @Param file formData file true "Image file"
// @Success 201 {object} URLResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/images [post]
func (h *ImagesHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart field \"file\" is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer src.Close()

	// Spool to a temp file: the adapter copies from a path, not a stream.
	spool, err := os.CreateTemp("", "imagevault-upload-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(spool.Name())
	}()
	if _, err := io.Copy(spool, src); err != nil {
		_ = spool.Close()
		return err
	}
	if err := spool.Close(); err != nil {
		return err
	}

	url, err := h.adapter.Save(c.Request().Context(), storage.Image{
		Name: fileHeader.Filename,
		Path: spool.Name(),
	}, "")
	if err != nil {
		return err
	}

	h.logger.Info("image uploaded",
		slog.String("name", fileHeader.Filename),
		slog.String("url", url),
	)
	return c.JSON(http.StatusCreated, URLResponse{URL: url})
}

// SaveRaw godoc
// @Summary Save raw image bytes
// @Description Writes the request body verbatim to the given root-relative path, overwriting any existing file.
// @Tags images
// @Param path query string true "Root-relative destination path"
// @Success 201 {object} URLResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/images/raw [post]
func (h *ImagesHandler) SaveRaw(c echo.Context) error {
	relPath := strings.TrimSpace(c.QueryParam("path"))
	if relPath == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter \"path\" is required")
	}

	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	url, err := h.adapter.SaveRaw(c.Request().Context(), data, relPath)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, URLResponse{URL: url})
}

// ReadRaw godoc
// @Summary Read raw image bytes
// @Description Returns the stored bytes at the given root-relative path, content type derived from the extension.
// @Tags images
// @Param path path string true "Root-relative asset path"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /api/images/raw/{path} [get]
func (h *ImagesHandler) ReadRaw(c echo.Context) error {
	relPath := c.Param("*")
	data, err := h.adapter.Read(c.Request().Context(), storage.ReadOptions{Path: relPath})
	if err != nil {
		return err
	}

	contentType := mime.TypeByExtension(filepath.Ext(relPath))
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Blob(http.StatusOK, contentType, data)
}

// Delete godoc
// @Summary Delete an image
// @Description Deletion is not supported by the local backend; always responds 501.
// @Tags images
// @Param path path string true "Root-relative asset path"
// @Failure 501 {object} ErrorResponse
// @Router /api/images/{path} [delete]
func (h *ImagesHandler) Delete(c echo.Context) error {
	relPath := c.Param("*")
	return h.adapter.Delete(c.Request().Context(), filepath.Base(relPath), filepath.Dir(relPath))
}
