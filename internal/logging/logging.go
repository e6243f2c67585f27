// Package logging builds the component loggers used across jira.
//
// Loggers are plain *log.Logger values with a "[component] " prefix. Output
// goes to stderr, or to a size-rotated file when a log file is configured.
// Without verbose mode, component loggers are silent so that command output
// stays clean.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/mschirtzinger/jira/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Factory hands out component loggers sharing one output.
type Factory struct {
	out     io.Writer
	closer  io.Closer
	verbose bool

	mu      sync.Mutex
	loggers map[string]*log.Logger
}

// NewFactory returns a Factory for cfg writing to stderr. When cfg.File is
// set, output goes to a lumberjack-rotated file; its directory is created if
// needed.
func NewFactory(cfg config.LogConfig) (*Factory, error) {
	return NewFactoryTo(cfg, os.Stderr)
}

// NewFactoryTo is NewFactory with w in place of stderr.
func NewFactoryTo(cfg config.LogConfig, w io.Writer) (*Factory, error) {
	f := &Factory{
		out:     w,
		verbose: cfg.Verbose,
		loggers: make(map[string]*log.Logger),
	}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, err
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		f.out = rotator
		f.closer = rotator
		// A log file is only configured to be written to.
		f.verbose = true
	}
	return f, nil
}

// Get returns the logger for component, creating it on first use.
func (f *Factory) Get(component string) *log.Logger {
	f.mu.Lock()
	defer f.mu.Unlock()

	if l, ok := f.loggers[component]; ok {
		return l
	}
	out := f.out
	if !f.verbose {
		out = io.Discard
	}
	l := log.New(out, "["+component+"] ", log.LstdFlags)
	f.loggers[component] = l
	return l
}

// Close flushes and closes the log file, if any.
func (f *Factory) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}
