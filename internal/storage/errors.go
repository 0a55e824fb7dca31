package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// ErrNotImplemented is returned by operations a backend deliberately does
// not support. It is a plain sentinel, not part of the classified taxonomy.
var ErrNotImplemented = errors.New("not implemented")

// NotFoundError reports that no asset exists at the requested path.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("image not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// BadRequestError reports a request that can never succeed, such as a path
// exceeding the filesystem's name-length limits.
type BadRequestError struct {
	Path string
	Err  error
}

func (e *BadRequestError) Error() string {
	if e.Path == "" {
		return "invalid image request"
	}
	return fmt.Sprintf("invalid image request: %s", e.Path)
}

func (e *BadRequestError) Unwrap() error { return e.Err }

// NoPermissionError reports that the filesystem denied access to the asset.
type NoPermissionError struct {
	Path string
	Err  error
}

func (e *NoPermissionError) Error() string {
	return fmt.Sprintf("access denied: %s", e.Path)
}

func (e *NoPermissionError) Unwrap() error { return e.Err }

// GenericStorageError is the catch-all for storage failures that fit none of
// the other kinds. It always wraps the underlying error.
type GenericStorageError struct {
	Message string
	Path    string
	Err     error
}

func (e *GenericStorageError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *GenericStorageError) Unwrap() error { return e.Err }

// classifyReadError maps a filesystem error from the read path onto the
// storage error taxonomy. relPath is the caller-supplied relative path,
// carried into messages so the host can report which asset failed.
func classifyReadError(err error, relPath string) error {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		return &NotFoundError{Path: relPath, Err: err}
	case errors.Is(err, syscall.ENAMETOOLONG):
		return &BadRequestError{Path: relPath, Err: err}
	case errors.Is(err, fs.ErrPermission):
		return &NoPermissionError{Path: relPath, Err: err}
	default:
		return &GenericStorageError{
			Message: fmt.Sprintf("cannot read image: %s", relPath),
			Path:    relPath,
			Err:     err,
		}
	}
}
