package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/mschirtzinger/jira/internal/db"
)

// App runs the interactive loop: draw the current page, read a command,
// perform the resulting action, repeat until the user exits.
type App struct {
	nav    *Navigator
	in     *bufio.Reader
	out    io.Writer
	term   Terminal
	logger *log.Logger

	// pending is a read still in flight from a cancelled Run. Only one
	// goroutine may read in at a time.
	pending chan lineResult
}

// NewApp creates the interactive loop. in must be shared with the prompts
// and terminal when they read from the same stream.
func NewApp(nav *Navigator, in *bufio.Reader, out io.Writer, term Terminal, logger *log.Logger) *App {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &App{nav: nav, in: in, out: out, term: term, logger: logger}
}

// Run blocks until the user exits, input ends, ctx is cancelled, or the
// backend fails. Not-found errors are shown and the loop continues, since
// they only mean the screen was stale.
func (a *App) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		a.term.ClearScreen()
		page := a.nav.CurrentPage()
		if page == nil {
			return nil
		}

		if err := page.Draw(a.out); err != nil {
			if db.IsFatal(err) {
				return err
			}
			a.showError("Error rendering page", err)
		}

		line, err := a.readLine(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		action, err := page.HandleInput(strings.TrimSpace(line))
		if err != nil {
			if db.IsFatal(err) {
				return err
			}
			a.showError("Error processing input", err)
			continue
		}
		if action == nil {
			continue
		}

		a.logger.Printf("Handling %s", action)
		if err := a.nav.HandleAction(*action); err != nil {
			if db.IsFatal(err) {
				return err
			}
			a.showError("Error handling action", err)
		}
	}
}

type lineResult struct {
	line string
	err  error
}

// readLine reads one command line, giving up when ctx is done.
//
// A read that is still blocked on cancellation keeps its goroutine until
// input arrives or in is closed; the next Run collects its result instead of
// starting a second reader on the shared input.
func (a *App) readLine(ctx context.Context) (string, error) {
	if a.pending == nil {
		ch := make(chan lineResult, 1)
		go func() {
			line, err := a.in.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
		a.pending = ch
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-a.pending:
		a.pending = nil
		return r.line, r.err
	}
}

func (a *App) showError(what string, err error) {
	a.logger.Printf("%s: %v", what, err)
	fmt.Fprintf(a.out, "%s %s: %v\n", RenderFail("✗"), what, err)
	fmt.Fprintln(a.out, renderMuted("Press any key to continue..."))
	a.term.WaitForKeyPress()
}
