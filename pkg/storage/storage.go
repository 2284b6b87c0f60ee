// Package storage provides the file lifecycle of one export pipeline:
// enumerating incoming files, archiving them and creating output files.
package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo contains metadata about an incoming file
type FileInfo struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"` // Absolute or base-relative path inside new/
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Storage defines the interface for pipeline file operations
type Storage interface {
	// List returns the regular files in the incoming directory whose name
	// ends with ext, in lexicographic order.
	List(ctx context.Context, ext string) ([]*FileInfo, error)

	// Open returns a reader for an incoming file
	Open(ctx context.Context, file *FileInfo) (io.ReadCloser, error)

	// Archive moves an incoming file into the archive directory, replacing
	// an archived file of the same name.
	Archive(ctx context.Context, file *FileInfo) error

	// Create opens (and truncates) an output file in the pipeline base directory
	Create(ctx context.Context, name string) (io.WriteCloser, string, error)
}

// Layout names the directories a pipeline works in.
type Layout struct {
	BaseDir      string // output files land here
	NewDir       string // incoming files
	ProcessedDir string // archive
}
