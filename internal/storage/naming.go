package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExistsFunc is the collision oracle UniqueFileName probes candidate names
// against. It matches the adapter's Exists method.
type ExistsFunc func(ctx context.Context, fileName, targetDir string) bool

// TargetDir returns the dated subdirectory (root/YYYY/MM, current UTC time)
// that uploads default to when the caller names no target.
func TargetDir(root string) string {
	now := time.Now().UTC()
	return filepath.Join(root, fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", int(now.Month())))
}

var unsafeNameRunes = regexp.MustCompile(`[^\w@.]`)

// SanitizeFileName replaces every rune outside word characters, "@", and "."
// with a dash, so client-supplied names store safely on any filesystem.
func SanitizeFileName(name string) string {
	return unsafeNameRunes.ReplaceAllString(name, "-")
}

var imageExtPattern = regexp.MustCompile(`(?i)^\.(gif|jpe?g|png|svg|svgz|webp)$`)

// UniqueFileName resolves a collision-free absolute destination for image
// inside targetDir. Starting from the sanitized original filename it probes
// name.ext, name-1.ext, name-2.ext, ... against the oracle and returns the
// first candidate not already present. Names with no recognized image
// extension keep the extension as part of the name, so the uniqueness
// suffix lands at the very end.
func UniqueFileName(ctx context.Context, image Image, targetDir string, exists ExistsFunc) string {
	base := filepath.Base(strings.TrimSpace(image.Name))
	ext := filepath.Ext(base)

	var name string
	if imageExtPattern.MatchString(ext) {
		name = SanitizeFileName(strings.TrimSuffix(base, ext))
	} else {
		name = SanitizeFileName(base)
		ext = ""
	}
	if strings.Trim(name, "-.") == "" {
		// Nothing usable survived sanitizing; name the asset ourselves so
		// unnamed uploads still store cleanly.
		name = "image-" + uuid.NewString()[:8]
	}

	for i := 0; ; i++ {
		candidate := name + ext
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", name, i, ext)
		}
		if !exists(ctx, candidate, targetDir) {
			return filepath.Join(targetDir, candidate)
		}
	}
}
