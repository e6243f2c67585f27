package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mschirtzinger/jira/internal/config"
	"github.com/mschirtzinger/jira/internal/db"
	"github.com/mschirtzinger/jira/internal/logging"
	"github.com/mschirtzinger/jira/internal/ui"
)

// streams are the process resources a command run may touch.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
	dir string // relative paths resolve against this
}

// app is the state shared by the commands of one run.
type app struct {
	streams

	cfg    *config.Config
	logs   *logging.Factory
	store  *db.JiraDatabase
	logger *log.Logger
}

// skipAutoInit marks commands that must see whether the document exists.
const skipAutoInit = "skip-auto-init"

// execute runs the command line and returns the process exit code.
func execute(ctx context.Context, args []string, s streams) int {
	a := &app{streams: s}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(s.in)
	root.SetOut(s.out)
	root.SetErr(s.err)

	err := root.ExecuteContext(ctx)
	if a.logs != nil {
		_ = a.logs.Close()
	}
	if err != nil {
		fmt.Fprintf(s.err, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "jira",
		Short: "Track epics and stories in a local document",
		Long: `jira keeps epics and the stories inside them in a single local document.

Every change reads the whole document, applies the edit, checks references
between epics and stories, and writes the document back. The file extension
picks the format: .json (default), .yaml, .toml, or .db for SQLite.

Run without a command to open the interactive UI.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUI(cmd.Context(), false)
		},
	}

	root.AddGroup(
		&cobra.Group{ID: "issues", Title: "Working With Issues:"},
		&cobra.Group{ID: "views", Title: "Views:"},
		&cobra.Group{ID: "setup", Title: "Setup:"},
	)

	pf := root.PersistentFlags()
	pf.String("db", config.DefaultDB, "Document path (.json, .yaml, .toml, or .db)")
	pf.String("config", "", "Config file (default: ./jira.yaml or ~/.config/jira/jira.yaml)")
	pf.Bool("no-init", false, "Fail instead of creating a missing document")
	pf.BoolP("verbose", "v", false, "Log operations to stderr")
	pf.String("log-file", "", "Write logs to a size-rotated file")

	root.AddCommand(
		newInitCmd(a),
		newShowCmd(a),
		newEpicCmd(a),
		newStoryCmd(a),
		newCheckCmd(a),
		newUICmd(a),
		newDashboardCmd(a),
	)
	return root
}

// setup loads configuration and opens the store before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		configFile = a.abs(configFile)
	}

	cfg, err := config.Load(config.Options{
		File:        configFile,
		SearchPaths: a.searchPaths(),
		Flags:       cmd.Flags(),
	})
	if err != nil {
		return err
	}
	cfg.DB = a.abs(cfg.DB)
	if cfg.Log.File != "" {
		cfg.Log.File = a.abs(cfg.Log.File)
	}
	a.cfg = cfg

	logs, err := logging.NewFactoryTo(cfg.Log, a.err)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	a.logs = logs
	a.logger = logs.Get("cli")
	if cfg.ConfigFile != "" {
		a.logger.Printf("Using config %s", cfg.ConfigFile)
	}

	a.store = db.NewWithDatabase(db.Open(cfg.DB), logs.Get("db"))

	if cfg.AutoInit && cmd.Annotations[skipAutoInit] == "" {
		created, err := a.store.Init()
		if err != nil {
			return err
		}
		if created {
			a.logger.Printf("Created empty document %s", cfg.DB)
		}
	}
	return nil
}

func (a *app) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(a.dir, path)
}

func (a *app) searchPaths() []string {
	paths := []string{a.dir}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "jira"))
	}
	return paths
}

// success prints a check-marked line to stdout.
func (a *app) success(format string, args ...any) {
	fmt.Fprintf(a.out, "%s %s\n", ui.RenderPass("✓"), fmt.Sprintf(format, args...))
}
