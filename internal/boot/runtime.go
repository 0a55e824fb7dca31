// Package boot provides runtime configuration for the image server.
package boot

import (
	"errors"
	"os"
	"strings"

	"github.com/imagevault/imagevault/internal/config"
)

// RuntimeConfig holds parsed runtime settings (server address, storage root,
// URL subdirectory, upload cap). Values may be overridden by environment
// variables (HTTP_ADDR, STORAGE_ROOT, URL_SUBDIR).
type RuntimeConfig struct {
	ServerAddr  string
	StorageRoot string
	URLSubdir   string
	MaxUpload   string
}

// ProvideRuntimeConfig builds RuntimeConfig from the given config and applies env overrides.
func ProvideRuntimeConfig(cfg config.Config) (*RuntimeConfig, error) {
	ret := &RuntimeConfig{
		ServerAddr:  cfg.Server.Addr,
		StorageRoot: cfg.Storage.Root,
		URLSubdir:   cfg.Storage.URLSubdir,
		MaxUpload:   cfg.Storage.MaxUpload,
	}

	if value := os.Getenv("HTTP_ADDR"); value != "" {
		ret.ServerAddr = value
	}
	if value := os.Getenv("STORAGE_ROOT"); value != "" {
		ret.StorageRoot = value
	}
	if value := os.Getenv("URL_SUBDIR"); value != "" {
		ret.URLSubdir = value
	}

	if strings.TrimSpace(ret.StorageRoot) == "" {
		return nil, errors.New("storage root is required")
	}
	return ret, nil
}
