package main

import (
	"bufio"
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/mschirtzinger/jira/internal/ui"
)

func newUICmd(a *app) *cobra.Command {
	var plain, accessible bool

	cmd := &cobra.Command{
		Use:     "ui",
		GroupID: "views",
		Short:   "Open the interactive UI",
		Long: `Open the interactive UI: browse epics and stories, create them, change
their status, and delete them.

Forms are used when stdin is a terminal; --plain asks line by line instead,
which is also what happens when input is piped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUIWith(cmd.Context(), plain, accessible)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Ask questions line by line instead of with forms")
	cmd.Flags().BoolVar(&accessible, "accessible", false, "Use screen-reader friendly forms")
	return cmd
}

func (a *app) runUI(ctx context.Context, plain bool) error {
	return a.runUIWith(ctx, plain, false)
}

func (a *app) runUIWith(ctx context.Context, plain, accessible bool) error {
	lines := bufio.NewReader(a.in)

	var (
		terminal ui.Terminal = ui.NewLineTerminal(lines)
		prompts  ui.Prompts  = ui.NewLinePrompts(lines, a.out)
	)
	if f, ok := a.in.(*os.File); ok {
		console := ui.NewConsoleTerminal(f, lines, a.out)
		ui.ConfigureColor(console.Output())
		terminal = console
		if console.IsInteractive() && !plain {
			prompts = ui.NewFormPrompts(accessible)
		}
	}

	nav := ui.NewNavigator(a.store, prompts)
	err := ui.NewApp(nav, lines, a.out, terminal, a.logs.Get("ui")).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
