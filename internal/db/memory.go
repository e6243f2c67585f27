package db

import (
	"sync"

	"github.com/mschirtzinger/jira/internal/models"
)

// MemoryDatabase is an in-memory backend that returns whatever was last
// written. It starts with the empty document. Tests use it to isolate
// JiraDatabase from persistence and to count backend calls.
type MemoryDatabase struct {
	mu     sync.Mutex
	state  models.DBState
	reads  int
	writes int

	readErr  error
	writeErr error
}

// NewMemoryDatabase returns a backend holding the empty document.
func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{state: models.NewDBState()}
}

// NewMemoryDatabaseWith returns a backend holding a copy of state.
func NewMemoryDatabaseWith(state models.DBState) *MemoryDatabase {
	return &MemoryDatabase{state: state.Clone()}
}

// ReadDB implements Database. The caller gets its own copy.
func (m *MemoryDatabase) ReadDB() (models.DBState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reads++
	if m.readErr != nil {
		return models.DBState{}, m.readErr
	}
	return m.state.Clone(), nil
}

// WriteDB implements Database.
func (m *MemoryDatabase) WriteDB(state models.DBState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.state = state.Clone()
	return nil
}

// FailReads makes every later ReadDB return err; nil restores normal reads.
func (m *MemoryDatabase) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// FailWrites makes every later WriteDB return err without storing anything.
func (m *MemoryDatabase) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Reads returns how many times ReadDB was called.
func (m *MemoryDatabase) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// Writes returns how many times WriteDB was called.
func (m *MemoryDatabase) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
