// Package photo keeps captured place photos in a library directory and
// hands out the URIs stored on place records.
package photo

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"placebook/internal/logging"

	"github.com/google/uuid"
)

// Library is a directory of imported photos.
type Library struct {
	Dir string
}

// NewLibrary returns a library rooted at dir, creating it if needed.
func NewLibrary(dir string) (*Library, error) {
	if dir == "" {
		return nil, errors.New("photo directory required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve photo directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	return &Library{Dir: abs}, nil
}

// Import copies the image at src into the library under a fresh name and
// returns its file:// URI. src is a local path or file:// URI; any other
// URI is returned unchanged.
func (l *Library) Import(src string) (string, error) {
	path, ok := localPath(src)
	if !ok {
		logging.PhotoDebug("Keeping external image URI %s", src)
		return src, nil
	}

	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open photo: %w", err)
	}
	defer in.Close()

	dst := filepath.Join(l.Dir, uuid.New().String()+strings.ToLower(filepath.Ext(path)))
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create library file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to copy photo: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to write photo: %w", err)
	}

	logging.Photo("Imported %s as %s", path, filepath.Base(dst))
	return fileURI(dst), nil
}

// Remove deletes a photo owned by the library. URIs pointing elsewhere and
// files already gone are ignored.
func (l *Library) Remove(uri string) error {
	path, ok := localPath(uri)
	if !ok || !l.owns(path) {
		logging.PhotoDebug("Not removing %s: outside library", uri)
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove photo: %w", err)
	}
	logging.Photo("Removed %s", filepath.Base(path))
	return nil
}

func (l *Library) owns(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(l.Dir, abs)
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." || filepath.IsAbs(rel) {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// localPath reports the filesystem path behind a plain path or file:// URI.
func localPath(s string) (string, bool) {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return s, s != ""
	}
	if u.Scheme != "file" {
		return "", false
	}
	return filepath.FromSlash(u.Path), u.Path != ""
}

func fileURI(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
