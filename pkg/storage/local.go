package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalStorage implements Storage using the local filesystem
type LocalStorage struct {
	layout Layout
}

// NewLocalStorage creates a local filesystem storage, creating the base,
// incoming and archive directories when missing.
func NewLocalStorage(layout Layout) (*LocalStorage, error) {
	for _, dir := range []string{layout.BaseDir, layout.NewDir, layout.ProcessedDir} {
		if dir == "" {
			return nil, fmt.Errorf("storage layout has an empty directory: %+v", layout)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	return &LocalStorage{layout: layout}, nil
}

// List returns the regular files in the incoming directory with the given extension
func (s *LocalStorage) List(ctx context.Context, ext string) ([]*FileInfo, error) {
	entries, err := os.ReadDir(s.layout.NewDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.layout.NewDir, err)
	}

	files := make([]*FileInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}

		files = append(files, &FileInfo{
			Name:    entry.Name(),
			Path:    filepath.Join(s.layout.NewDir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	// os.ReadDir already sorts by name; keep the contract explicit.
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	return files, nil
}

// Open returns a reader for an incoming file
func (s *LocalStorage) Open(ctx context.Context, file *FileInfo) (io.ReadCloser, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Archive moves an incoming file into the archive directory under its
// original name.
func (s *LocalStorage) Archive(ctx context.Context, file *FileInfo) error {
	dst := filepath.Join(s.layout.ProcessedDir, filepath.Base(file.Name))
	if err := os.Rename(file.Path, dst); err != nil {
		return fmt.Errorf("failed to archive %s: %w", file.Name, err)
	}
	return nil
}

// Create opens an output file in the base directory, truncating any previous content
func (s *LocalStorage) Create(ctx context.Context, name string) (io.WriteCloser, string, error) {
	path := filepath.Join(s.layout.BaseDir, sanitizeFilename(name))
	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file: %w", err)
	}
	return f, path, nil
}

// sanitizeFilename removes unsafe characters from filenames
func sanitizeFilename(name string) string {
	// Replace path separators and other dangerous characters
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
