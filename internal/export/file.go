package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileDestination writes JSONL data to a local file.
type FileDestination struct {
	path string
}

// NewFileDestination creates a destination writing to the given path.
// Parent directories are created on demand.
func NewFileDestination(path string) *FileDestination {
	return &FileDestination{path: path}
}

// Write writes data to the configured file, replacing any previous content.
func (d *FileDestination) Write(_ context.Context, data []byte) error {
	if dir := filepath.Dir(d.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}
	if err := os.WriteFile(d.path, data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
