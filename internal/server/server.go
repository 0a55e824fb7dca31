// Package server provides the HTTP server and Echo setup for the image API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/imagevault/imagevault/internal/handlers"
	"github.com/imagevault/imagevault/internal/storage"
)

// Server is the HTTP server (Echo) with registered handlers.
type Server struct {
	echo   *echo.Echo
	addr   string
	logger *slog.Logger
}

// Handler registers routes on the Echo instance.
type Handler interface {
	Register(e *echo.Echo)
}

// NewServer builds the Echo server with recovery, request logging, a body
// limit for uploads, the storage error mapping, and the given handlers.
func NewServer(log *slog.Logger, addr, maxUpload string,
	handlers ...Handler,
) *Server {
	if addr == "" {
		addr = ":8080"
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", c.RealIP()),
			)
			return nil
		},
	}))
	if maxUpload != "" {
		e.Use(middleware.BodyLimit(maxUpload))
	}

	for _, h := range handlers {
		if h != nil {
			h.Register(e)
		}
	}

	return &Server{
		echo:   e,
		addr:   addr,
		logger: log.With(slog.String("component", "server")),
	}
}

// NewHTTPErrorHandler maps storage errors onto HTTP statuses: not found 404,
// bad request 400, no permission 403, generic storage failure 500, and the
// unimplemented-operation sentinel 501. Echo's own HTTP errors pass through;
// anything else is a 500.
func NewHTTPErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := err.Error()

		var (
			notFound     *storage.NotFoundError
			badRequest   *storage.BadRequestError
			noPermission *storage.NoPermissionError
			generic      *storage.GenericStorageError
			httpErr      *echo.HTTPError
		)
		switch {
		case errors.As(err, &notFound):
			status = http.StatusNotFound
		case errors.As(err, &badRequest):
			status = http.StatusBadRequest
		case errors.As(err, &noPermission):
			status = http.StatusForbidden
		case errors.As(err, &generic):
			status = http.StatusInternalServerError
		case errors.Is(err, storage.ErrNotImplemented):
			status = http.StatusNotImplemented
		case errors.As(err, &httpErr):
			status = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				message = m
			}
		}

		if status >= http.StatusInternalServerError {
			log.Error("request failed", slog.Int("status", status), slog.Any("error", err))
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, handlers.ErrorResponse{Message: message})
		}
		if writeErr != nil {
			log.Error("write error response", slog.Any("error", writeErr))
		}
	}
}

// Start starts the HTTP server (blocks until shutdown).
func (s *Server) Start() error {
	return s.echo.Start(s.addr)
}

// Stop gracefully shuts down the server using the given context.
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
