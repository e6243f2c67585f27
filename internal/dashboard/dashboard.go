package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mschirtzinger/jira/internal/watch"
)

// Dashboard serves live updates for one document. It re-reads the document
// through the store whenever the watcher reports a change.
type Dashboard struct {
	store   Reader
	server  *Server
	handler *Handler
	watcher *watch.FileWatcher
	logger  *log.Logger
}

// New creates a dashboard for the document at path, read through store.
func New(store Reader, path string, config *Config) (*Dashboard, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}

	watchConfig := watch.DefaultConfig()
	watchConfig.Logger = config.Logger
	if config.Debounce > 0 {
		watchConfig.Debounce = config.Debounce
	}

	watcher, err := watch.NewFileWatcher(path, watchConfig)
	if err != nil {
		return nil, err
	}

	server := NewServer(config, store)
	return &Dashboard{
		store:   store,
		server:  server,
		handler: NewHandler(server, config.Logger),
		watcher: watcher,
		logger:  config.Logger,
	}, nil
}

// Start loads the initial document, starts the HTTP server and begins
// watching the file.
func (d *Dashboard) Start() error {
	doc, err := d.store.ReadDB()
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	if err := d.server.Start(); err != nil {
		return err
	}
	d.handler.OnDocument(doc)

	if err := d.watcher.Start(); err != nil {
		_ = d.server.Stop()
		return err
	}
	return nil
}

// Run processes file changes until ctx is done, then stops everything.
// Start must have been called.
func (d *Dashboard) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return d.Stop()

		case event, ok := <-d.watcher.Events():
			if !ok {
				return d.Stop()
			}
			d.Reload(event)

		case err, ok := <-d.watcher.Errors():
			if !ok {
				return d.Stop()
			}
			d.logger.Printf("Watcher error: %v", err)
		}
	}
}

// Reload re-reads the document after event and hands it to the handler.
func (d *Dashboard) Reload(event watch.Event) {
	d.logger.Printf("Document %s (%d raw events)", event.Op, event.Raw)

	doc, err := d.store.ReadDB()
	if err != nil {
		d.handler.OnReadError(err)
		return
	}
	d.handler.OnDocument(doc)
}

// Stop shuts down the watcher and server. Calling it more than once is safe.
func (d *Dashboard) Stop() error {
	return errors.Join(d.watcher.Stop(), d.server.Stop())
}

// Addr returns the address the server listens on.
func (d *Dashboard) Addr() string {
	return d.server.GetAddr()
}

// Handler returns the handler that tracks the document.
func (d *Dashboard) Handler() *Handler {
	return d.handler
}
