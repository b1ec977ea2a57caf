package fs

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	// TempFilePrefix marks partially written files. The watcher ignores them.
	TempFilePrefix = "mdwiki-tmp-"
)

// WriteFileAtomic streams r into filename through a temp file in the same
// directory and renames it into place, so readers (and the draft watcher)
// never observe a half-written file. The directory must exist.
func WriteFileAtomic(filename string, r io.Reader, perm os.FileMode) error {
	dir := filepath.Dir(filename)

	tmpFile, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name()) // no-op after a successful rename

	if _, err := io.Copy(tmpFile, r); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpFile.Name(), perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", filename, err)
	}
	return nil
}

// SaveExport writes an exported document into dir, creating dir if needed.
// The file name is reduced to its base so a server-supplied name can not
// escape dir. It returns the written path.
func SaveExport(dir, name string, data []byte) (string, error) {
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." {
		return "", fmt.Errorf("invalid export file name %q", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := WriteFileAtomic(path, bytes.NewReader(data), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
