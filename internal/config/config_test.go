package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != DefaultHTTPAddr {
		t.Fatalf("expected default addr %q, got %q", DefaultHTTPAddr, cfg.Server.Addr)
	}
	if cfg.Storage.Root != DefaultStorageRoot {
		t.Fatalf("expected default root %q, got %q", DefaultStorageRoot, cfg.Storage.Root)
	}
	if cfg.Storage.MaxUpload != DefaultMaxUpload {
		t.Fatalf("expected default max upload %q, got %q", DefaultMaxUpload, cfg.Storage.MaxUpload)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("unexpected log defaults %+v", cfg.Log)
	}
}

func TestLoadDecodesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[log]
level = "debug"

[server]
addr = ":9090"

[storage]
root = "/srv/images"
url_subdir = "app"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected level debug, got %q", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Fatalf("expected unset format to keep default, got %q", cfg.Log.Format)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("expected addr :9090, got %q", cfg.Server.Addr)
	}
	if cfg.Storage.Root != "/srv/images" || cfg.Storage.URLSubdir != "app" {
		t.Fatalf("unexpected storage config %+v", cfg.Storage)
	}
	if cfg.Storage.MaxUpload != DefaultMaxUpload {
		t.Fatalf("expected unset max upload to keep default, got %q", cfg.Storage.MaxUpload)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not = [valid"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected decode error")
	}
}
