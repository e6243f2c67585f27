package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mschirtzinger/jira/internal/config"
)

func TestFactory_QuietByDefault(t *testing.T) {
	f, err := NewFactory(config.LogConfig{})
	if err != nil {
		t.Fatalf("NewFactory() failed: %v", err)
	}
	defer f.Close()

	if got := f.Get("db").Writer(); got != io.Discard {
		t.Errorf("non-verbose logger should discard, got %T", got)
	}
}

func TestFactory_VerboseUsesStderr(t *testing.T) {
	f, err := NewFactory(config.LogConfig{Verbose: true})
	if err != nil {
		t.Fatalf("NewFactory() failed: %v", err)
	}
	if got := f.Get("db").Writer(); got != os.Stderr {
		t.Errorf("verbose logger should write to stderr, got %T", got)
	}
}

func TestFactory_SameLoggerPerComponent(t *testing.T) {
	f, _ := NewFactory(config.LogConfig{})
	if f.Get("ui") != f.Get("ui") {
		t.Error("Get() should return the same logger for a component")
	}
	if f.Get("ui") == f.Get("db") {
		t.Error("Get() should return distinct loggers per component")
	}
	if prefix := f.Get("ui").Prefix(); prefix != "[ui] " {
		t.Errorf("Prefix() = %q, want [ui] ", prefix)
	}
}

func TestFactory_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "jira.log")
	f, err := NewFactory(config.LogConfig{File: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("NewFactory() failed: %v", err)
	}

	f.Get("db").Printf("Created epic %d", 1)
	if err := f.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "[db] ") || !strings.Contains(string(data), "Created epic 1") {
		t.Errorf("log file content = %q", data)
	}
}

func TestDiscard(t *testing.T) {
	if Discard().Writer() != io.Discard {
		t.Error("Discard() should write to io.Discard")
	}
}
