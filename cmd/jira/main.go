// Command jira is a local epic and story tracker.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}

	code := execute(ctx, os.Args[1:], streams{
		in:  os.Stdin,
		out: os.Stdout,
		err: os.Stderr,
		dir: dir,
	})
	cancel()
	os.Exit(code)
}
