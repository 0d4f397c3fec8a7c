package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Upload kinds and the directory each is stored under.
const (
	KindLogo = "logo"
	KindQR   = "qr"
)

// URLPrefix is the public path uploaded assets are served from.
const URLPrefix = "/uploads/"

var (
	// ErrNotFound is returned when an asset key does not exist in a store.
	ErrNotFound = errors.New("asset not found")

	// ErrInvalidKey is returned for keys outside the served directories or with traversal.
	ErrInvalidKey = errors.New("invalid asset key")
)

var kindDirs = map[string]string{
	KindLogo: "logos",
	KindQR:   "qr",
}

// servedDirs whitelists the directories readable under URLPrefix.
var servedDirs = map[string]bool{
	"logos":     true,
	"qr":        true,
	"images":    true,
	"documents": true,
}

var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".svg":  "image/svg+xml",
	".gif":  "image/gif",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// Store persists uploaded assets by key ("<dir>/<filename>").
type Store interface {
	// Save writes the content under key, replacing any existing object.
	Save(ctx context.Context, key string, r io.Reader, contentType string) error

	// Open returns the content stored under key. Returns ErrNotFound when absent.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Dir returns the storage directory for an upload kind.
func Dir(kind string) (string, bool) {
	dir, ok := kindDirs[kind]
	return dir, ok
}

// Key joins a served directory and a filename, rejecting traversal.
func Key(dir, filename string) (string, error) {
	if !servedDirs[dir] {
		return "", fmt.Errorf("%w: directory %q", ErrInvalidKey, dir)
	}
	if filename == "" || filename == "." || filename == ".." ||
		strings.ContainsAny(filename, `/\`) || strings.Contains(filename, "..") {
		return "", fmt.Errorf("%w: filename %q", ErrInvalidKey, filename)
	}
	return dir + "/" + filename, nil
}

// KeyFromURL extracts the storage key from a "/uploads/<dir>/<file>" reference.
func KeyFromURL(ref string) (string, bool) {
	rest, ok := strings.CutPrefix(ref, URLPrefix)
	if !ok {
		return "", false
	}
	dir, file, ok := strings.Cut(rest, "/")
	if !ok {
		return "", false
	}
	key, err := Key(dir, file)
	if err != nil {
		return "", false
	}
	return key, true
}

// URL returns the public reference for a key.
func URL(key string) string {
	return URLPrefix + key
}

// StoredName builds "<kind>_<YYYYmmddHHMMSS>_<basename>" for an uploaded file.
func StoredName(kind, original string, now time.Time) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	base = strings.ReplaceAll(base, " ", "_")
	return fmt.Sprintf("%s_%s_%s", kind, now.Format("20060102150405"), base)
}

// AllowedImage reports whether filename has an accepted upload extension.
func AllowedImage(filename string) bool {
	switch strings.ToLower(path.Ext(filename)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// ContentType guesses a MIME type from the file extension.
func ContentType(name string) string {
	if ct, ok := imageTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}
