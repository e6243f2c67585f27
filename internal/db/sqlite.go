package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/mschirtzinger/jira/internal/models"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS epics (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL,
    status      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS stories (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL,
    status      TEXT NOT NULL
);

-- No foreign key to stories: a dangling reference must survive a round trip.
CREATE TABLE IF NOT EXISTS epic_stories (
    epic_id  INTEGER NOT NULL,
    position INTEGER NOT NULL,
    story_id INTEGER NOT NULL,
    PRIMARY KEY (epic_id, position)
);
`

const lastItemIDKey = "last_item_id"

// SQLiteDatabase stores the document in normalized SQLite tables.
//
// Every call opens its own connection, so nothing about the document is
// cached between operations. WriteDB replaces all rows inside one
// transaction: either the whole document lands or the previous one stays.
type SQLiteDatabase struct {
	path string
}

// NewSQLiteDatabase returns a backend for the database file at path.
func NewSQLiteDatabase(path string) *SQLiteDatabase {
	return &SQLiteDatabase{path: path}
}

// Path returns the database file.
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// dsn returns the URI for the database file. The path is escaped so that
// '#', '?' and '%' in a file name are not read as URI syntax.
func (s *SQLiteDatabase) dsn(readOnly bool) string {
	u := url.URL{Scheme: "file", OmitHost: true, Path: s.path}
	if readOnly {
		u.RawQuery = "mode=ro"
	}
	return u.String()
}

func (s *SQLiteDatabase) open(readOnly bool) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", s.dsn(readOnly))
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

// ReadDB implements Database.
func (s *SQLiteDatabase) ReadDB() (models.DBState, error) {
	if _, err := os.Stat(s.path); err != nil {
		return models.DBState{}, fmt.Errorf("%w: failed to open %s: %w", ErrReadFailure, s.path, err)
	}

	conn, err := s.open(true)
	if err != nil {
		return models.DBState{}, fmt.Errorf("%w: failed to open %s: %w", ErrReadFailure, s.path, err)
	}
	defer conn.Close()

	state, err := readState(context.Background(), conn)
	if err != nil {
		return models.DBState{}, fmt.Errorf("%w: %s: %w", ErrReadFailure, s.path, err)
	}
	return state, nil
}

func readState(ctx context.Context, conn *sql.DB) (models.DBState, error) {
	state := models.NewDBState()

	var last int64
	err := conn.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, lastItemIDKey).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DBState{}, fmt.Errorf("missing %s", lastItemIDKey)
	}
	if err != nil {
		return models.DBState{}, fmt.Errorf("failed to read %s: %w", lastItemIDKey, err)
	}
	if last < 0 || last > int64(^uint32(0)) {
		return models.DBState{}, fmt.Errorf("%s out of range: %d", lastItemIDKey, last)
	}
	state.LastItemID = uint32(last)

	rows, err := conn.QueryContext(ctx, `SELECT id, name, description, status FROM epics`)
	if err != nil {
		return models.DBState{}, fmt.Errorf("failed to query epics: %w", err)
	}
	for rows.Next() {
		var id uint32
		var epic models.Epic
		var status string
		if err := rows.Scan(&id, &epic.Name, &epic.Description, &status); err != nil {
			rows.Close()
			return models.DBState{}, fmt.Errorf("failed to scan epic: %w", err)
		}
		if epic.Status, err = decodeStatus(status); err != nil {
			rows.Close()
			return models.DBState{}, fmt.Errorf("epic %d: %w", id, err)
		}
		epic.Stories = []uint32{}
		state.Epics[id] = epic
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return models.DBState{}, fmt.Errorf("failed to read epics: %w", err)
	}
	if err := rows.Close(); err != nil {
		return models.DBState{}, err
	}

	rows, err = conn.QueryContext(ctx, `SELECT epic_id, story_id FROM epic_stories ORDER BY epic_id, position`)
	if err != nil {
		return models.DBState{}, fmt.Errorf("failed to query epic stories: %w", err)
	}
	for rows.Next() {
		var epicID, storyID uint32
		if err := rows.Scan(&epicID, &storyID); err != nil {
			rows.Close()
			return models.DBState{}, fmt.Errorf("failed to scan epic story: %w", err)
		}
		epic, ok := state.Epics[epicID]
		if !ok {
			rows.Close()
			return models.DBState{}, fmt.Errorf("story list for unknown epic %d", epicID)
		}
		epic.Stories = append(epic.Stories, storyID)
		state.Epics[epicID] = epic
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return models.DBState{}, fmt.Errorf("failed to read epic stories: %w", err)
	}
	if err := rows.Close(); err != nil {
		return models.DBState{}, err
	}

	rows, err = conn.QueryContext(ctx, `SELECT id, name, description, status FROM stories`)
	if err != nil {
		return models.DBState{}, fmt.Errorf("failed to query stories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id uint32
		var story models.Story
		var status string
		if err := rows.Scan(&id, &story.Name, &story.Description, &status); err != nil {
			return models.DBState{}, fmt.Errorf("failed to scan story: %w", err)
		}
		if story.Status, err = decodeStatus(status); err != nil {
			return models.DBState{}, fmt.Errorf("story %d: %w", id, err)
		}
		state.Stories[id] = story
	}
	if err := rows.Err(); err != nil {
		return models.DBState{}, fmt.Errorf("failed to read stories: %w", err)
	}
	return state, nil
}

// WriteDB implements Database.
func (s *SQLiteDatabase) WriteDB(state models.DBState) error {
	if err := checkText(state); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("%w: failed to create database directory: %w", ErrWriteFailure, err)
	}

	conn, err := s.open(false)
	if err != nil {
		return fmt.Errorf("%w: failed to open %s: %w", ErrWriteFailure, s.path, err)
	}
	defer conn.Close()

	if err := writeState(context.Background(), conn, state); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailure, s.path, err)
	}
	return nil
}

func writeState(ctx context.Context, conn *sql.DB, state models.DBState) error {
	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"meta", "epics", "stories", "epic_stories"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, lastItemIDKey, int64(state.LastItemID)); err != nil {
		return fmt.Errorf("failed to write %s: %w", lastItemIDKey, err)
	}

	for id, epic := range state.Epics {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO epics (id, name, description, status) VALUES (?, ?, ?, ?)`,
			int64(id), epic.Name, epic.Description, string(epic.Status)); err != nil {
			return fmt.Errorf("failed to write epic %d: %w", id, err)
		}
		for pos, storyID := range epic.Stories {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO epic_stories (epic_id, position, story_id) VALUES (?, ?, ?)`,
				int64(id), pos, int64(storyID)); err != nil {
				return fmt.Errorf("failed to write story list of epic %d: %w", id, err)
			}
		}
	}

	for id, story := range state.Stories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stories (id, name, description, status) VALUES (?, ?, ?, ?)`,
			int64(id), story.Name, story.Description, string(story.Status)); err != nil {
			return fmt.Errorf("failed to write story %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Init creates the database with an empty document if the file is absent.
func (s *SQLiteDatabase) Init() (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("%w: failed to stat %s: %w", ErrReadFailure, s.path, err)
	}
	if err := s.WriteDB(models.NewDBState()); err != nil {
		return false, err
	}
	return true, nil
}
