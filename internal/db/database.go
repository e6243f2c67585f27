// Package db persists the tracker document and applies store operations to it.
//
// Two layers live here. Backends (FileDatabase, SQLiteDatabase,
// MemoryDatabase) load and store the whole document and nothing else.
// JiraDatabase owns one backend and exposes one method per user command; each
// method reads the document, changes a working copy, and writes the copy back
// only if every precondition held.
package db

import (
	"path/filepath"
	"strings"

	"github.com/mschirtzinger/jira/internal/models"
)

// Database is a storage backend for the whole document.
//
// ReadDB fails with an error wrapping ErrReadFailure when the target cannot be
// located or decoded. WriteDB fails with an error wrapping ErrWriteFailure when
// the target cannot be created or fully written.
type Database interface {
	ReadDB() (models.DBState, error)
	WriteDB(state models.DBState) error
}

// Initializer is implemented by backends that can create an empty target.
// Init reports whether a new target was created; an existing one is left alone.
type Initializer interface {
	Init() (bool, error)
}

// Open returns the backend for path: SQLite for .db, .sqlite and .sqlite3,
// otherwise a file backend with the codec matching the extension.
func Open(path string) Database {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteDatabase(path)
	default:
		return NewFileDatabase(path, CodecForPath(path))
	}
}
