package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// DiskStore keeps uploaded profile pictures in a flat directory. Records
// reference files by bare filename only; the directory path never leaves
// this package.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create upload dir %s: %w", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Dir() string { return s.dir }

// Filename builds a collision-resistant stored name from the client's
// original filename: a slugified base plus a UUID, keeping the extension.
func Filename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	cleaned := slug.Make(base)
	if cleaned == "" {
		cleaned = "upload"
	}
	return cleaned + "-" + uuid.NewString() + ext
}

// Save writes the upload under the given stored filename.
func (s *DiskStore) Save(name string, src io.Reader) error {
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("storage: failed to create %s: %w", name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return fmt.Errorf("storage: failed to write %s: %w", name, err)
	}
	return nil
}

// Remove deletes a stored file. A missing file is not an error; the record
// write and the file write are not transactional, so danglers can happen.
func (s *DiskStore) Remove(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: failed to remove %s: %w", name, err)
	}
	return nil
}

// StaleFiles returns the names of files last modified before the cutoff.
// Used by the orphan sweeper to skip uploads still in flight.
func (s *DiskStore) StaleFiles(cutoff time.Time) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to read upload dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
