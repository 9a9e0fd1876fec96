package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// FileStore saves uploaded report files to disk under a base directory.
type FileStore struct {
	basePath string
}

// NewFileStore creates the base directory if missing.
func NewFileStore(basePath string) (*FileStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("storage base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the storage root directory.
func (f *FileStore) BasePath() string {
	return f.basePath
}

// Save writes the stream under the given stored name.
func (f *FileStore) Save(name string, r io.Reader) error {
	target := filepath.Join(f.basePath, SanitizeFilename(name))

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// Remove deletes a stored file. A file already missing from disk is not an
// error; the metadata row decides whether the file should exist.
func (f *FileStore) Remove(name string) error {
	path, err := f.Resolve(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// Resolve maps a stored name to its on-disk path. Names that would escape the
// storage directory are rejected, and the file must exist.
func (f *FileStore) Resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(filepath.Clean(name)) || strings.HasPrefix(name, ".") {
		return "", os.ErrNotExist
	}
	path := filepath.Join(f.basePath, name)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

// SanitizeFilename strips path components and replaces characters outside
// [A-Za-z0-9._-] with underscores.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	return name
}

// StoredName derives the collision-resistant stored filename for an upload:
// patient id, upload timestamp, then the sanitized original name.
func StoredName(patientID uint, original string) string {
	return fmt.Sprintf("%d_%d_%s", patientID, time.Now().UTC().Unix(), SanitizeFilename(original))
}
