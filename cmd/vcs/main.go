package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"video-search/cmd/vcs/cmd"
)

func main() {
	// An interrupt cancels the command context; deferred store cleanups still run.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
