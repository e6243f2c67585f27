package db

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mschirtzinger/jira/internal/models"
)

// FileDatabase stores the document as a single text file.
type FileDatabase struct {
	path  string
	codec Codec
}

// NewFileDatabase returns a backend for path. A nil codec means JSON.
func NewFileDatabase(path string, codec Codec) *FileDatabase {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &FileDatabase{path: path, codec: codec}
}

// Path returns the file the backend reads and writes.
func (f *FileDatabase) Path() string {
	return f.path
}

// Codec returns the encoding used for the file.
func (f *FileDatabase) Codec() Codec {
	return f.codec
}

// ReadDB implements Database.
func (f *FileDatabase) ReadDB() (models.DBState, error) {
	// #nosec G304 - path comes from configuration
	data, err := os.ReadFile(f.path)
	if err != nil {
		return models.DBState{}, fmt.Errorf("%w: failed to read %s: %w", ErrReadFailure, f.path, err)
	}

	state, err := f.codec.Unmarshal(data)
	if err != nil {
		return models.DBState{}, fmt.Errorf("%w: failed to parse %s as %s: %w", ErrReadFailure, f.path, f.codec.Name(), err)
	}
	return state, nil
}

// WriteDB implements Database. The document is written to a temp file in the
// same directory and renamed over the target.
func (f *FileDatabase) WriteDB(state models.DBState) error {
	data, err := f.codec.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: failed to encode document as %s: %w", ErrWriteFailure, f.codec.Name(), err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory %s: %w", ErrWriteFailure, dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %w", ErrWriteFailure, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to write temp file: %w", ErrWriteFailure, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to sync temp file: %w", ErrWriteFailure, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to close temp file: %w", ErrWriteFailure, err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to replace %s: %w", ErrWriteFailure, f.path, err)
	}
	return nil
}

// Init writes an empty document if the file does not exist yet.
func (f *FileDatabase) Init() (bool, error) {
	_, err := os.Stat(f.path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("%w: failed to stat %s: %w", ErrReadFailure, f.path, err)
	}
	if err := f.WriteDB(models.NewDBState()); err != nil {
		return false, err
	}
	return true, nil
}
