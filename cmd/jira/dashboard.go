package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mschirtzinger/jira/internal/dashboard"
)

func newDashboardCmd(a *app) *cobra.Command {
	var host string

	cmd := &cobra.Command{
		Use:     "dashboard",
		GroupID: "views",
		Short:   "Serve a live WebSocket view of the document",
		Long: `Start a WebSocket dashboard server that follows the document file.

Any change to the document, from this or another jira process, is broadcast
to connected clients.

WebSocket messages include:
- epic_update: Epic created, updated, or deleted
- story_update: Story created, updated, or deleted
- stats: Epic and story counts by status, and integrity problems
- error: The document could not be re-read

Example usage:
  jira dashboard                   # Start on default port 8080
  jira dashboard --port 9000       # Start on custom port

Connect with a WebSocket client:
  ws://localhost:8080/ws`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := &dashboard.Config{
				Host:     host,
				Port:     a.cfg.Dashboard.Port,
				Debounce: a.cfg.Dashboard.Debounce,
				Logger:   a.logs.Get("dashboard"),
			}

			dash, err := dashboard.New(a.store, a.cfg.DB, config)
			if err != nil {
				return err
			}
			if err := dash.Start(); err != nil {
				_ = dash.Stop()
				return fmt.Errorf("failed to start dashboard: %w", err)
			}

			addr := dash.Addr()
			fmt.Fprintf(a.out, "Dashboard server started on http://%s\n", addr)
			fmt.Fprintf(a.out, "WebSocket endpoint: ws://%s/ws\n", addr)
			fmt.Fprintf(a.out, "Health check: http://%s/health\n", addr)
			fmt.Fprintln(a.out, "\nPress Ctrl+C to stop...")

			if err := dash.Run(cmd.Context()); err != nil {
				return fmt.Errorf("error during shutdown: %w", err)
			}
			fmt.Fprintln(a.out, "Dashboard server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Address to bind")
	cmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	cmd.Flags().Duration("debounce", 100*time.Millisecond, "Quiet period before a file change is processed")
	return cmd
}
