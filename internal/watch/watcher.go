// Package watch notifies about changes to the document file made by any
// process, including other instances of the tracker.
package watch

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventOp represents what happened to the document.
type EventOp int

const (
	// OpCreate indicates the document appeared.
	OpCreate EventOp = iota
	// OpModify indicates the document was rewritten.
	OpModify
	// OpDelete indicates the document is gone.
	OpDelete
)

// String returns a human-readable representation of the operation.
func (op EventOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Event is one debounced change of the document file.
type Event struct {
	// Path is the absolute path of the document.
	Path string
	// Op is the net effect of the changes since the previous event.
	Op EventOp
	// Raw is how many file system events were folded into this one.
	Raw int
}

// Config holds configuration for the watcher.
type Config struct {
	// Debounce is how long the file must be quiet before an event is sent.
	// Writers replace the file with a rename, which shows up as several
	// raw events.
	Debounce time.Duration

	// Logger for watcher activity
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Debounce: 100 * time.Millisecond,
		Logger:   log.New(io.Discard, "[watch] ", log.LstdFlags),
	}
}

// FileWatcher watches a single file. It watches the parent directory
// because an atomic replace gives the file a new inode.
type FileWatcher struct {
	path   string
	config *Config

	watcher *fsnotify.Watcher
	events  chan Event
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup

	mu       sync.Mutex
	running  bool
	stopOnce sync.Once
}

// NewFileWatcher creates a watcher for the file at path.
// The watcher must be started with Start() before it will emit events.
func NewFileWatcher(path string, config *Config) (*FileWatcher, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard, "", 0)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		path:    abs,
		config:  config,
		watcher: watcher,
		events:  make(chan Event, 16),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}, nil
}

// Path returns the absolute path being watched.
func (fw *FileWatcher) Path() string {
	return fw.path
}

// Start begins watching. The parent directory must exist; the file itself
// need not.
func (fw *FileWatcher) Start() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	select {
	case <-fw.done:
		return fmt.Errorf("watcher already stopped")
	default:
	}
	if fw.running {
		return fmt.Errorf("watcher already running")
	}

	dir := filepath.Dir(fw.path)
	if err := fw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	fw.running = true
	fw.wg.Add(1)
	go fw.processEvents(fileExists(fw.path))

	fw.config.Logger.Printf("Watching %s", fw.path)
	return nil
}

// Stop stops watching and closes the Events and Errors channels.
// It blocks until the event goroutine has exited. Calling it more than
// once is safe.
func (fw *FileWatcher) Stop() error {
	var closeErr error
	fw.stopOnce.Do(func() {
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()

		close(fw.done)
		if err := fw.watcher.Close(); err != nil {
			closeErr = fmt.Errorf("failed to close watcher: %w", err)
		}
		fw.wg.Wait()

		close(fw.events)
		close(fw.errors)
	})
	return closeErr
}

// Events returns the channel of debounced changes.
// This channel is closed when the watcher is stopped.
func (fw *FileWatcher) Events() <-chan Event {
	return fw.events
}

// Errors returns the channel that emits error notifications.
// This channel is closed when the watcher is stopped.
func (fw *FileWatcher) Errors() <-chan error {
	return fw.errors
}

// IsRunning returns true if the watcher is currently running.
func (fw *FileWatcher) IsRunning() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.running
}

func (fw *FileWatcher) processEvents(existed bool) {
	defer fw.wg.Done()

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending int
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-fw.done:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.relevant(event) {
				continue
			}
			pending++
			if timer == nil {
				timer = time.NewTimer(fw.config.Debounce)
			} else {
				timer.Reset(fw.config.Debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			exists := fileExists(fw.path)

			var op EventOp
			switch {
			case exists && existed:
				op = OpModify
			case exists:
				op = OpCreate
			case existed:
				op = OpDelete
			default:
				// Created and removed again within one window.
				pending = 0
				continue
			}
			existed = exists

			select {
			case fw.events <- Event{Path: fw.path, Op: op, Raw: pending}:
			case <-fw.done:
				return
			}
			pending = 0

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}

			select {
			case fw.errors <- err:
			case <-fw.done:
				return
			}
		}
	}
}

func (fw *FileWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != fw.path {
		return false
	}
	// Ignore chmod and other metadata-only events
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
