package exporter

import (
	"fmt"
	"os"
	"path/filepath"
)

// StagedFile is a fully written output that is not yet visible at its final
// path. Commit moves it into place; Discard removes it.
type StagedFile struct {
	temp string
	path string
	done bool
}

// Path returns the final location of the file
func (s *StagedFile) Path() string {
	return s.path
}

// Commit renames the staged file to its final path
func (s *StagedFile) Commit() error {
	if s.done {
		return nil
	}
	s.done = true
	if err := os.Rename(s.temp, s.path); err != nil {
		os.Remove(s.temp)
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// Discard removes the staged file. The final path is left untouched.
func (s *StagedFile) Discard() {
	if s.done {
		return
	}
	s.done = true
	os.Remove(s.temp)
}

// createTemp opens a temporary file in the directory of path, creating the
// directory when needed.
func createTemp(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	return file, nil
}

// stageTemp syncs and closes file and returns it as staged output for path
func stageTemp(file *os.File, path string) (*StagedFile, error) {
	if err := file.Sync(); err != nil {
		discardTemp(file)
		return nil, fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return nil, fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(file.Name(), 0o644); err != nil {
		os.Remove(file.Name())
		return nil, fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	return &StagedFile{temp: file.Name(), path: path}, nil
}

func discardTemp(file *os.File) {
	file.Close()
	os.Remove(file.Name())
}
